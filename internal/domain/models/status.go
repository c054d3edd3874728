package models

// SubmissionStatus is the review state of a submission. The numeric values
// are the wire/storage encoding and must stay stable; display ordering is
// a separate concern (SortPriority), so new states can be added without
// disturbing either.
type SubmissionStatus int

const (
	StatusUnderReview SubmissionStatus = iota // default; stored as absent field
	StatusRejected
	StatusAccepted
	StatusMarkedOrange
	StatusMarkedYellow
	StatusMarkedBlue
	StatusMarkedPurple
)

// Valid reports whether v is a known status value. Used to validate
// reviewer PATCH bodies.
func (s SubmissionStatus) Valid() bool {
	return s >= StatusUnderReview && s <= StatusMarkedPurple
}

// IsMarked reports whether s is one of the color-tagged triage states.
// Marked states are reviewer-only: they never notify the submitter and are
// indistinguishable from "under review" on the submitter side.
func (s SubmissionStatus) IsMarked() bool {
	return s >= StatusMarkedOrange && s <= StatusMarkedPurple
}

// Resolved reports whether s is a final, submitter-visible outcome.
func (s SubmissionStatus) Resolved() bool {
	return s == StatusAccepted || s == StatusRejected
}

// sortPriority orders statuses for reviewer list views: flagged items
// first, resolved items next, open items last. Deliberately decoupled from
// the wire encoding above.
var sortPriority = map[SubmissionStatus]int{
	StatusMarkedOrange: 6,
	StatusMarkedYellow: 5,
	StatusMarkedBlue:   4,
	StatusMarkedPurple: 3,
	StatusAccepted:     2,
	StatusRejected:     1,
	StatusUnderReview:  0,
}

// SortPriority returns the display-ordering rank; higher sorts first.
func (s SubmissionStatus) SortPriority() int {
	return sortPriority[s]
}

// ReviewerLabel is the staff-facing name of the status.
func (s SubmissionStatus) ReviewerLabel() string {
	switch s {
	case StatusRejected:
		return "Rejected"
	case StatusAccepted:
		return "Accepted"
	case StatusMarkedOrange:
		return "Marked (Orange)"
	case StatusMarkedYellow:
		return "Marked (Yellow)"
	case StatusMarkedBlue:
		return "Marked (Blue)"
	case StatusMarkedPurple:
		return "Marked (Purple)"
	default:
		return "Under Review"
	}
}

// Label is the submitter-facing name. All marked states collapse into
// "Under Review" so triage tags stay private to reviewers.
func (s SubmissionStatus) Label() string {
	switch s {
	case StatusRejected:
		return "Rejected"
	case StatusAccepted:
		return "Accepted"
	default:
		return "Under Review"
	}
}

// Color returns the UI color scheme for the status badge.
func (s SubmissionStatus) Color() string {
	switch s {
	case StatusAccepted:
		return "green"
	case StatusRejected:
		return "red"
	case StatusMarkedOrange:
		return "orange"
	case StatusMarkedYellow:
		return "yellow"
	case StatusMarkedBlue:
		return "blue"
	case StatusMarkedPurple:
		return "purple"
	default:
		return "gray"
	}
}
