package testutil

import (
	"context"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/poketwo/forms/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts a community member record with the given roles.
func (f *Fixtures) CreateMember(ctx context.Context, id int64, roles ...int64) models.Member {
	f.t.Helper()

	m := models.Member{ID: id, Roles: roles}
	if _, err := f.db.Collection("member").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreatePoketwoMember inserts a Pokétwo-side member record.
func (f *Fixtures) CreatePoketwoMember(ctx context.Context, id int64, suspended bool) models.PoketwoMember {
	f.t.Helper()

	m := models.PoketwoMember{ID: id, Suspended: suspended}
	if suspended {
		m.SuspensionReason = "test suspension"
	}
	if _, err := f.db.Collection("member").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test poketwo member: %v", err)
	}
	return m
}

// CreateSubmission inserts a submission for the given form and user.
func (f *Fixtures) CreateSubmission(ctx context.Context, formID string, userID int64) models.Submission {
	f.t.Helper()

	sub := models.Submission{
		ID:      primitive.NewObjectID(),
		FormID:  formID,
		UserID:  userID,
		UserTag: fmt.Sprintf("tester%d#0001", userID),
		Email:   fmt.Sprintf("tester%d@example.com", userID),
		Data:    map[string]any{"answer": "because"},
	}
	if _, err := f.db.Collection("submission").InsertOne(ctx, sub); err != nil {
		f.t.Fatalf("failed to create test submission: %v", err)
	}
	return sub
}

// CreateSubmissionWithStatus inserts a submission carrying a review status.
func (f *Fixtures) CreateSubmissionWithStatus(ctx context.Context, formID string, userID int64, status models.SubmissionStatus) models.Submission {
	f.t.Helper()

	sub := f.CreateSubmission(ctx, formID, userID)
	if status == models.StatusUnderReview {
		return sub
	}

	_, err := f.db.Collection("submission").UpdateByID(ctx, sub.ID,
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		f.t.Fatalf("failed to set test submission status: %v", err)
	}
	sub.Status = status
	return sub
}
