package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/domain/shared"
	"github.com/btg-funds-backend/internal/domain/transaction"
)

// Message stores a completed ledger entry for reliable publication to
// the transaction archive. Rows are written in the same storage
// transaction as the balance mutation, so the archive eventually sees
// exactly the entries the ledger committed.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID string              `json:"transaction_id"`
	UserID        uuid.UUID           `json:"user_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(entry *transaction.Entry) (*Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: entry.TransactionID,
		UserID:        entry.UserID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEntry extracts the ledger entry from the payload
func (m *Message) GetEntry() (*transaction.Entry, error) {
	var entry transaction.Entry
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
