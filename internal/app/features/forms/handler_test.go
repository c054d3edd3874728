package forms_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	uierrors "github.com/poketwo/forms/internal/app/features/errors"
	formsfeature "github.com/poketwo/forms/internal/app/features/forms"
	memberstore "github.com/poketwo/forms/internal/app/store/members"
	substore "github.com/poketwo/forms/internal/app/store/submissions"
	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/app/system/formium"
	"github.com/poketwo/forms/internal/app/system/memcache"
	"github.com/poketwo/forms/internal/domain/models"
	"github.com/poketwo/forms/internal/testutil"
)

func formServer(t *testing.T) *formium.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/forms/ban-appeal") {
			fmt.Fprint(w, `{"data": {"id": "f1", "slug": "ban-appeal", "name": "Ban Appeal", "fields": []}}`)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	c := formium.New("proj", "token", nil)
	c.SetBaseURL(srv.URL)
	return c
}

func createRequest(t *testing.T, formID, body string, user models.User) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/forms/"+formID+"/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = auth.WithTestUser(req, user, nil)
	return testutil.WithChiURLParam(req, "formID", formID)
}

func TestServeCreateSubmission(t *testing.T) {
	db := testutil.SetupTestDB(t)

	subs := substore.New(db)
	members := memberstore.New(db, db, memcache.New(memberstore.DefaultTTL))
	h := formsfeature.NewHandler(members, subs, formServer(t), nil, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	user := models.User{ID: 42, Username: "oliver", Discriminator: "0001", Email: "o@example.com"}
	req := createRequest(t, "ban-appeal", `{"reason": "it was not me"}`, user)

	rec := httptest.NewRecorder()
	h.ServeCreateSubmission(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	var stored models.Submission
	if err := db.Collection("submission").FindOne(ctx, bson.M{"form_id": "ban-appeal"}).Decode(&stored); err != nil {
		t.Fatalf("stored submission: %v", err)
	}
	if stored.UserID != 42 || stored.UserTag != "oliver#0001" || stored.Email != "o@example.com" {
		t.Errorf("snapshot: got %+v", stored)
	}
	if stored.Data["reason"] != "it was not me" {
		t.Errorf("data: got %v", stored.Data)
	}
	if stored.Status != models.StatusUnderReview {
		t.Errorf("status: got %v", stored.Status)
	}
}

func TestServeCreateSubmissionBadBody(t *testing.T) {
	db := testutil.SetupTestDB(t)

	subs := substore.New(db)
	members := memberstore.New(db, db, memcache.New(memberstore.DefaultTTL))
	h := formsfeature.NewHandler(members, subs, formServer(t), nil, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	user := models.User{ID: 42, Username: "oliver", Discriminator: "0001"}
	req := createRequest(t, "ban-appeal", `not json`, user)

	rec := httptest.NewRecorder()
	h.ServeCreateSubmission(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeCreateSubmissionUnknownForm(t *testing.T) {
	db := testutil.SetupTestDB(t)

	subs := substore.New(db)
	members := memberstore.New(db, db, memcache.New(memberstore.DefaultTTL))
	h := formsfeature.NewHandler(members, subs, formServer(t), nil, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	user := models.User{ID: 42, Username: "oliver", Discriminator: "0001"}
	req := createRequest(t, "no-such-form", `{"reason": "hi"}`, user)

	rec := httptest.NewRecorder()
	h.ServeCreateSubmission(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
