package shared

// TransactionType defines possible ledger operations
type TransactionType string

const (
	TransactionTypeSubscription TransactionType = "SUBSCRIPTION"
	TransactionTypeCancellation TransactionType = "CANCELLATION"
)

// TransactionStatus defines ledger entry processing states
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// OutboxStatus defines archive message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
