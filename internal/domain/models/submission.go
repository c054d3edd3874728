package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission is a stored form response. It is created once by the submitter
// and afterwards mutated only by reviewers changing status/comment; records
// are never deleted in-app.
//
// Status uses omitempty so that UNDER_REVIEW (the zero value) is stored as
// an absent field, matching documents created before the status field
// existed. ReviewerID and Comment are set on the first reviewer action.
type Submission struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormID     string             `bson:"form_id" json:"form_id"`
	UserID     int64              `bson:"user_id" json:"user_id,string"`
	UserTag    string             `bson:"user_tag" json:"user_tag"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Data       map[string]any     `bson:"data" json:"data"`
	Status     SubmissionStatus   `bson:"status,omitempty" json:"status"`
	ReviewerID *int64             `bson:"reviewer_id,omitempty" json:"reviewer_id,omitempty,string"`
	Comment    string             `bson:"comment,omitempty" json:"comment,omitempty"`
}

// CreatedAt derives the creation time from the ObjectID. There is no
// separate timestamp field; recency filters bound on the id instead.
func (s *Submission) CreatedAt() int64 {
	return s.ID.Timestamp().Unix()
}
