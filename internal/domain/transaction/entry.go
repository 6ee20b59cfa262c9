package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("transaction amount must be positive")
)

// Entry is one record in the append-only transaction ledger. FundName is
// a snapshot taken at transaction time so history stays readable even if
// the fund is later renamed or retired. Completed entries are immutable;
// corrections happen through new offsetting entries.
type Entry struct {
	ID            uuid.UUID                `json:"id" bson:"_id"`
	TransactionID string                   `json:"transaction_id" bson:"transaction_id"`
	UserID        uuid.UUID                `json:"user_id" bson:"user_id"`
	FundID        uuid.UUID                `json:"fund_id" bson:"fund_id"`
	FundName      string                   `json:"fund_name" bson:"fund_name"`
	Type          shared.TransactionType   `json:"type" bson:"type"`
	Amount        int64                    `json:"amount" bson:"amount"` // COP
	Status        shared.TransactionStatus `json:"status" bson:"status"`
	CreatedAt     time.Time                `json:"created_at" bson:"created_at"`
	CompletedAt   *time.Time               `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// NewEntry creates a COMPLETED ledger entry for a subscribe or cancel
// operation. The caller persists it in the same storage transaction as
// the user balance mutation.
func NewEntry(userID, fundID uuid.UUID, fundName string, txType shared.TransactionType, amount int64) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	id := uuid.New()
	return &Entry{
		ID:            id,
		TransactionID: FormatTransactionID(now, userID, id),
		UserID:        userID,
		FundID:        fundID,
		FundName:      fundName,
		Type:          txType,
		Amount:        amount,
		Status:        shared.TransactionStatusCompleted,
		CreatedAt:     now,
		CompletedAt:   &now,
	}, nil
}

// FormatTransactionID builds the traceable, sortable business identifier
// ("TXN_<UTC timestamp>_<user id fragment>_<entry id fragment>"). The
// timestamp has one-second resolution, so the entry fragment keeps IDs
// unique when the same user transacts twice within a second.
func FormatTransactionID(t time.Time, userID, entryID uuid.UUID) string {
	return "TXN_" + t.UTC().Format("20060102_150405") + "_" + userID.String()[:6] + "_" + entryID.String()[:6]
}
