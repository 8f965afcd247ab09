package enums

// TransactionStatus tracks the local view of a payment gateway transaction.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusFailed  TransactionStatus = "failed"
	TransactionStatusExpired TransactionStatus = "expired"
)

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsTerminal reports whether no further gateway notifications should change the status.
func (t TransactionStatus) IsTerminal() bool {
	switch t {
	case TransactionStatusPaid, TransactionStatusFailed, TransactionStatusExpired:
		return true
	default:
		return false
	}
}
