package submissions_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/poketwo/forms/internal/app/store/submissions"
	"github.com/poketwo/forms/internal/domain/models"
	"github.com/poketwo/forms/internal/testutil"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	created, err := store.Create(ctx, models.Submission{
		FormID:  "ban-appeal",
		UserID:  42,
		UserTag: "oliver#0001",
		Email:   "o@example.com",
		Data:    map[string]any{"reason": "it was not me"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("Create must assign an id")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FormID != "ban-appeal" || got.UserID != 42 || got.UserTag != "oliver#0001" {
		t.Errorf("round trip: got %+v", got)
	}
	if got.Status != models.StatusUnderReview {
		t.Errorf("new submission status: got %v", got.Status)
	}
	if got.Data["reason"] != "it was not me" {
		t.Errorf("data: got %v", got.Data)
	}
}

func TestCreateRequiresIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)

	if _, err := store.Create(ctx, models.Submission{UserID: 42}); err != submissions.ErrMissingIdentity {
		t.Errorf("missing form_id: err = %v", err)
	}
	if _, err := store.Create(ctx, models.Submission{FormID: "ban-appeal"}); err != submissions.ErrMissingIdentity {
		t.Errorf("missing user_id: err = %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != submissions.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHasSubmitted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)

	fx.CreateSubmission(ctx, "ban-appeal", 42)

	if ok, err := store.HasSubmitted(ctx, "ban-appeal", 42); err != nil || !ok {
		t.Errorf("HasSubmitted same form/user: got %v, %v", ok, err)
	}
	if ok, err := store.HasSubmitted(ctx, "ban-appeal", 43); err != nil || ok {
		t.Errorf("HasSubmitted other user: got %v, %v", ok, err)
	}
	if ok, err := store.HasSubmitted(ctx, "moderator-application", 42); err != nil || ok {
		t.Errorf("HasSubmitted other form: got %v, %v", ok, err)
	}
}

func TestUpdateAppliesPatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)
	sub := fx.CreateSubmission(ctx, "ban-appeal", 42)

	status := models.StatusAccepted
	reviewer := int64(7)
	comment := "welcome back"
	err := store.Update(ctx, sub.ID, submissions.Patch{
		Status:     &status,
		ReviewerID: &reviewer,
		Comment:    &comment,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusAccepted {
		t.Errorf("status: got %v", got.Status)
	}
	if got.ReviewerID == nil || *got.ReviewerID != 7 {
		t.Errorf("reviewer_id: got %v", got.ReviewerID)
	}
	if got.Comment != "welcome back" {
		t.Errorf("comment: got %q", got.Comment)
	}
}

func TestUpdateLastWriteWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)
	sub := fx.CreateSubmission(ctx, "ban-appeal", 42)

	accepted, rejected := models.StatusAccepted, models.StatusRejected
	first, second := int64(7), int64(8)

	if err := store.Update(ctx, sub.ID, submissions.Patch{Status: &accepted, ReviewerID: &first}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := store.Update(ctx, sub.ID, submissions.Patch{Status: &rejected, ReviewerID: &second}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	got, _ := store.GetByID(ctx, sub.ID)
	if got.Status != models.StatusRejected || *got.ReviewerID != 8 {
		t.Errorf("last write should win: got status=%v reviewer=%v", got.Status, got.ReviewerID)
	}
}

func TestUpdatePreservesUntouchedFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)
	sub := fx.CreateSubmission(ctx, "ban-appeal", 42)

	status := models.StatusAccepted
	comment := "first pass"
	if err := store.Update(ctx, sub.ID, submissions.Patch{Status: &status, Comment: &comment}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A later status-only patch must not clear the comment.
	rejected := models.StatusRejected
	if err := store.Update(ctx, sub.ID, submissions.Patch{Status: &rejected}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.GetByID(ctx, sub.ID)
	if got.Comment != "first pass" {
		t.Errorf("comment should survive a status-only patch, got %q", got.Comment)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)
	status := models.StatusAccepted
	if err := store.Update(ctx, primitive.NewObjectID(), submissions.Patch{Status: &status}); err != submissions.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEmptyPatchIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)
	if err := store.Update(ctx, primitive.NewObjectID(), submissions.Patch{}); err != nil {
		t.Errorf("empty patch: err = %v", err)
	}
}

func TestListStatusFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)

	fx.CreateSubmission(ctx, "ban-appeal", 1) // status absent = under review
	fx.CreateSubmissionWithStatus(ctx, "ban-appeal", 2, models.StatusAccepted)
	fx.CreateSubmissionWithStatus(ctx, "ban-appeal", 3, models.StatusRejected)
	fx.CreateSubmissionWithStatus(ctx, "ban-appeal", 4, models.StatusMarkedOrange)
	fx.CreateSubmission(ctx, "moderator-application", 5)

	tests := []struct {
		name   string
		filter submissions.StatusFilter
		want   int
	}{
		{"all", submissions.AllStatuses(), 4},
		{"absent matches missing field", submissions.AbsentStatus(), 1},
		{"exact under review matches missing field", submissions.ExactStatus(models.StatusUnderReview), 1},
		{"exact accepted", submissions.ExactStatus(models.StatusAccepted), 1},
		{"open excludes resolved", submissions.OpenOnly(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, "ban-appeal", submissions.ListOptions{Status: tt.filter})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("count: got %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestListUserFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)

	fx.CreateSubmission(ctx, "ban-appeal", 1)
	fx.CreateSubmission(ctx, "ban-appeal", 1)
	fx.CreateSubmission(ctx, "ban-appeal", 2)

	got, err := store.List(ctx, "ban-appeal", submissions.ListOptions{UserID: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("count: got %d, want 2", len(got))
	}
	for _, sub := range got {
		if sub.UserID != 1 {
			t.Errorf("unexpected submitter %d", sub.UserID)
		}
	}
}

func TestListPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)

	total := submissions.PageSize + 5
	for i := 0; i < total; i++ {
		fx.CreateSubmission(ctx, "ban-appeal", int64(i+1))
	}

	page1, err := store.List(ctx, "ban-appeal", submissions.ListOptions{Page: 1})
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if len(page1) != submissions.PageSize {
		t.Errorf("page 1: got %d, want %d", len(page1), submissions.PageSize)
	}

	page2, err := store.List(ctx, "ban-appeal", submissions.ListOptions{Page: 2})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(page2) != 5 {
		t.Errorf("page 2: got %d, want 5", len(page2))
	}

	page3, err := store.List(ctx, "ban-appeal", submissions.ListOptions{Page: 3})
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(page3) != 0 {
		t.Errorf("page 3: got %d, want 0", len(page3))
	}

	// Page values below 1 behave as page 1.
	page0, err := store.List(ctx, "ban-appeal", submissions.ListOptions{Page: 0})
	if err != nil {
		t.Fatalf("List page 0: %v", err)
	}
	if len(page0) != submissions.PageSize {
		t.Errorf("page 0: got %d, want %d", len(page0), submissions.PageSize)
	}
}

func TestListSortsFlaggedFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := submissions.New(db)

	fx.CreateSubmission(ctx, "ban-appeal", 1)
	marked := fx.CreateSubmissionWithStatus(ctx, "ban-appeal", 2, models.StatusMarkedPurple)

	got, err := store.List(ctx, "ban-appeal", submissions.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("count: got %d", len(got))
	}
	if got[0].ID != marked.ID {
		t.Error("marked submission should sort first")
	}
}
