package submissions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/poketwo/forms/internal/domain/models"
)

// PageSize is the fixed page size for submission lists.
const PageSize = 100

// recentWindow bounds the "only recent" filter. Implemented against the
// ObjectID's timestamp component; there is no separate created_at field.
const recentWindow = 6 * 30 * 24 * time.Hour

var (
	// ErrNotFound is returned when a submission id resolves to nothing.
	ErrNotFound = errors.New("submission not found")
	// ErrMissingIdentity is returned when a create lacks the required
	// form/user identity.
	ErrMissingIdentity = errors.New("submission requires form_id and user_id")
)

// Store persists form submissions in a single collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submission")}
}

// EnsureIndexes creates the indexes the list queries lean on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "form_id", Value: 1}, {Key: "status", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_form_status_id"),
		},
		{
			Keys:    bson.D{{Key: "form_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_form_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new submission and returns it with the generated id.
// The data payload is stored as-is; field validation happened client-side
// against the hosted form schema.
func (s *Store) Create(ctx context.Context, sub models.Submission) (models.Submission, error) {
	if sub.FormID == "" || sub.UserID == 0 {
		return models.Submission{}, ErrMissingIdentity
	}
	sub.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.Submission{}, err
	}
	return sub, nil
}

// GetByID loads one submission.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var sub models.Submission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// HasSubmitted reports whether the user already has a submission for the
// form. The form page uses this to show the success panel instead of the
// form again.
func (s *Store) HasSubmitted(ctx context.Context, formID string, userID int64) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"form_id": formID, "user_id": userID}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Patch is a partial reviewer update. Nil fields are left untouched;
// writes are last-write-wins with no conflict detection.
type Patch struct {
	Status     *models.SubmissionStatus
	ReviewerID *int64
	Comment    *string
}

// Update applies a reviewer patch to one submission.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) error {
	set := bson.M{}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.ReviewerID != nil {
		set["reviewer_id"] = *p.ReviewerID
	}
	if p.Comment != nil {
		set["comment"] = *p.Comment
	}
	if len(set) == 0 {
		return nil
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// StatusFilter narrows a list query by review state.
type StatusFilter struct {
	kind   statusFilterKind
	status models.SubmissionStatus
}

type statusFilterKind int

const (
	filterAll statusFilterKind = iota
	filterAbsent
	filterExact
	filterOpen
)

// AllStatuses matches every submission regardless of state.
func AllStatuses() StatusFilter { return StatusFilter{kind: filterAll} }

// AbsentStatus matches submissions whose status field is missing or zero:
// legacy records written before the status field existed, plus anything
// still explicitly under review.
func AbsentStatus() StatusFilter { return StatusFilter{kind: filterAbsent} }

// ExactStatus matches one status value.
func ExactStatus(st models.SubmissionStatus) StatusFilter {
	return StatusFilter{kind: filterExact, status: st}
}

// OpenOnly matches everything not yet accepted or rejected, the default
// reviewer worklist view.
func OpenOnly() StatusFilter { return StatusFilter{kind: filterOpen} }

func (f StatusFilter) apply(filter bson.M) {
	switch f.kind {
	case filterAbsent:
		filter["$or"] = bson.A{
			bson.M{"status": bson.M{"$exists": false}},
			bson.M{"status": models.StatusUnderReview},
		}
	case filterExact:
		if f.status == models.StatusUnderReview {
			// The default state is stored as an absent field.
			filter["$or"] = bson.A{
				bson.M{"status": bson.M{"$exists": false}},
				bson.M{"status": models.StatusUnderReview},
			}
			return
		}
		filter["status"] = f.status
	case filterOpen:
		filter["status"] = bson.M{"$nin": bson.A{models.StatusAccepted, models.StatusRejected}}
	}
}

// ListOptions narrows and pages a form's submissions.
type ListOptions struct {
	UserID     int64 // 0 = any submitter
	Page       int   // 1-based; values < 1 mean page 1
	OnlyRecent bool  // restrict to the last six months
	Status     StatusFilter
}

// List returns one page of a form's submissions, status-descending then
// newest-first.
func (s *Store) List(ctx context.Context, formID string, opts ListOptions) ([]models.Submission, error) {
	filter := bson.M{"form_id": formID}
	if opts.UserID != 0 {
		filter["user_id"] = opts.UserID
	}
	if opts.OnlyRecent {
		cutoff := primitive.NewObjectIDFromTimestamp(time.Now().Add(-recentWindow))
		filter["_id"] = bson.M{"$gte": cutoff}
	}
	opts.Status.apply(filter)

	page := opts.Page
	if page < 1 {
		page = 1
	}

	find := options.Find().
		SetSort(bson.D{{Key: "status", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(PageSize * (page - 1))).
		SetLimit(PageSize)

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	subs := make([]models.Submission, 0, PageSize)
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
