package submissions

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/poketwo/forms/internal/domain/models"
)

func subWithStatus(ts time.Time, st models.SubmissionStatus) models.Submission {
	return models.Submission{
		ID:     primitive.NewObjectIDFromTimestamp(ts),
		Status: st,
	}
}

func TestOrderForDisplayRanksByPriority(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Deliberately shuffled input; the stored numeric encoding would put
	// purple ahead of orange, the display order must not.
	subs := []models.Submission{
		subWithStatus(base, models.StatusUnderReview),
		subWithStatus(base.Add(1*time.Minute), models.StatusMarkedPurple),
		subWithStatus(base.Add(2*time.Minute), models.StatusAccepted),
		subWithStatus(base.Add(3*time.Minute), models.StatusMarkedOrange),
		subWithStatus(base.Add(4*time.Minute), models.StatusRejected),
		subWithStatus(base.Add(5*time.Minute), models.StatusMarkedBlue),
		subWithStatus(base.Add(6*time.Minute), models.StatusMarkedYellow),
	}

	orderForDisplay(subs)

	want := []models.SubmissionStatus{
		models.StatusMarkedOrange,
		models.StatusMarkedYellow,
		models.StatusMarkedBlue,
		models.StatusMarkedPurple,
		models.StatusAccepted,
		models.StatusRejected,
		models.StatusUnderReview,
	}
	for i, st := range want {
		if subs[i].Status != st {
			t.Fatalf("position %d: got status %d, want %d", i, subs[i].Status, st)
		}
	}
}

func TestOrderForDisplayBreaksTiesNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	older := subWithStatus(base, models.StatusMarkedOrange)
	newer := subWithStatus(base.Add(time.Hour), models.StatusMarkedOrange)

	subs := []models.Submission{older, newer}
	orderForDisplay(subs)

	if subs[0].ID != newer.ID {
		t.Fatalf("expected newest submission first, got %s", subs[0].ID.Hex())
	}
}
