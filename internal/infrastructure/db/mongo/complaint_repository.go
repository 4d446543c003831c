package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civichub/society-api/internal/core/domain"
)

const collectionComplaints = "complaints"

// ComplaintRepository implements ports.ComplaintRepository using MongoDB.
type ComplaintRepository struct {
	col *mongo.Collection
}

func NewComplaintRepository(db *mongo.Database) *ComplaintRepository {
	return &ComplaintRepository{col: db.Collection(collectionComplaints)}
}

// Create inserts a new complaint document.
func (r *ComplaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return domain.StorageError("insert complaint", err)
	}
	return nil
}

func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &c, domain.ErrComplaintNotFound, "find complaint"); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ComplaintRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Complaint, error) {
	list := []*domain.Complaint{}
	if err := findMany(ctx, r.col, bson.M{"user_id": ownerID}, &list, "list complaints by owner"); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ComplaintRepository) ListAll(ctx context.Context) ([]*domain.Complaint, error) {
	list := []*domain.Complaint{}
	if err := findMany(ctx, r.col, bson.M{}, &list, "list complaints"); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus atomically moves complaint id from `from` to `to`. The status
// is part of the filter, so a complaint changed by someone else since it was
// read is not overwritten.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ComplaintStatus, at time.Time) (*domain.Complaint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(from)}
	update := bson.M{"$set": bson.M{"status": string(to), "updated_at": at.UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Complaint
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.StorageError("update complaint status", err)
	}

	// Nothing matched: either the complaint is gone or its status moved on.
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return nil, domain.StorageError("update complaint status", err)
	}
	if n == 0 {
		return nil, domain.ErrComplaintNotFound
	}
	return nil, domain.ErrInvalidTransition
}
