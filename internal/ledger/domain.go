package ledger

import (
	"time"
)

// Type enumerates supported stock movements. The set is closed: the
// projection formula switches exhaustively over it.
type Type string

const (
	// TypeIn represents an inbound movement (receipt).
	TypeIn Type = "IN"
	// TypeOut represents an outbound movement (issue).
	TypeOut Type = "OUT"
	// TypeAdjust represents a manual correction. Adjustment quantities are
	// always positive and always add to stock; a downward correction is
	// posted as an OUT movement instead.
	TypeAdjust Type = "ADJ"
)

// Valid reports whether the type is one of the closed set.
func (t Type) Valid() bool {
	switch t {
	case TypeIn, TypeOut, TypeAdjust:
		return true
	}
	return false
}

// DefaultCreator is attached to transactions posted without an identity.
const DefaultCreator = "system"

// Transaction models one ledger event together with its line items. Once
// committed it is read-only; corrections are posted as new transactions.
type Transaction struct {
	ID         int64      `json:"id"`
	OccurredAt time.Time  `json:"occurred_at"`
	Type       Type       `json:"type"`
	Reference  string     `json:"reference,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	Lines      []LineItem `json:"lines"`
}

// TotalAmount sums the derived line totals.
func (t Transaction) TotalAmount() float64 {
	var total float64
	for _, line := range t.Lines {
		total += line.TotalCost()
	}
	return total
}

// LineItem is one product movement within a transaction. A product appears
// in at most one line per transaction.
type LineItem struct {
	ID            int64   `json:"id"`
	TransactionID int64   `json:"transaction_id"`
	ProductID     int64   `json:"product_id"`
	ProductCode   string  `json:"product_code,omitempty"`
	ProductName   string  `json:"product_name,omitempty"`
	Quantity      int64   `json:"quantity"`
	UnitCost      float64 `json:"unit_cost"`
}

// TotalCost is derived, never stored.
func (l LineItem) TotalCost() float64 {
	return float64(l.Quantity) * l.UnitCost
}

// LineInput describes one line of a post request.
type LineInput struct {
	ProductID int64
	Quantity  int64
	UnitCost  float64
}

// PostInput describes a post request.
type PostInput struct {
	OccurredAt     time.Time
	Type           Type
	Reference      string
	Remarks        string
	CreatedBy      string
	IdempotencyKey string
	Lines          []LineInput
}

// ListFilters narrows List results. Page and PerPage are 1-based; zero
// PerPage disables pagination.
type ListFilters struct {
	Type    Type
	Page    int
	PerPage int
}
