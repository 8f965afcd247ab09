package validators

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStringTrims(t *testing.T) {
	assert.Equal(t, "Rumah", SanitizeString("  Rumah \n", 40))
	assert.Equal(t, "Rumah", SanitizeString("Rumah", 0))
}

func TestSanitizeStringCutsOnCharacterBoundary(t *testing.T) {
	got := SanitizeString("Kopi ☕☕☕ Gayo", 6)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Kopi ☕", got)

	assert.Equal(t, "日本語", SanitizeString("日本語テキスト", 3))
}
