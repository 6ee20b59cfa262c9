package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/btg-funds-backend/internal/domain/transaction"
)

const (
	// ArchiveCollectionName is the name of the archive collection in MongoDB
	ArchiveCollectionName = "transaction_archive"
)

// ArchiveRepository implements the transaction.ArchiveRepository
// interface for MongoDB
type ArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) transaction.ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores a ledger entry keyed by its transaction ID. Replaying the
// same event overwrites the document, keeping the archive idempotent.
func (r *ArchiveRepository) Upsert(ctx context.Context, entry *transaction.Entry) error {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"transaction_id": entry.TransactionID}
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, filter, entry, opts)
	if err != nil {
		r.logger.Error("Failed to upsert archive entry",
			"transaction_id", entry.TransactionID,
			"error", err)
		return fmt.Errorf("failed to upsert archive entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves an archived entry by its transaction ID.
// Returns ErrEntryNotFound if no entry exists.
func (r *ArchiveRepository) GetByTransactionID(ctx context.Context, transactionID string) (*transaction.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	var entry transaction.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get archive entry",
			"transaction_id", transactionID,
			"error", err)
		return nil, fmt.Errorf("failed to get archive entry: %w", err)
	}

	return &entry, nil
}

// GetByUserID retrieves paginated archived entries for a user.
// Results are sorted by creation time in descending order (newest first).
func (r *ArchiveRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*transaction.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archive entries",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archive entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*transaction.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archive entries",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archive entries: %w", err)
	}

	return entries, nil
}

// GetByTimeRange retrieves paginated archived entries within the specified
// time window. Results are sorted newest-first for recent-first access.
func (r *ArchiveRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*transaction.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{
		"created_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archive entries by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get archive entries by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*transaction.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archive entries",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode archive entries: %w", err)
	}

	return entries, nil
}
