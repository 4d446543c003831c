package domain

import "time"

// ComplaintStatus represents the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "PENDING"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusRejected   ComplaintStatus = "REJECTED"
)

// MaxIssueLength bounds the issue text accepted on submission.
const MaxIssueLength = 2000

// validTransitions defines the allowed state machine transitions.
// RESOLVED and REJECTED have no entry: they are terminal.
var validTransitions = map[ComplaintStatus][]ComplaintStatus{
	StatusPending:    {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusResolved, StatusRejected},
}

// ParseComplaintStatus validates a raw status string.
func ParseComplaintStatus(s string) (ComplaintStatus, bool) {
	switch ComplaintStatus(s) {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return ComplaintStatus(s), true
	}
	return "", false
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s ComplaintStatus) CanTransitionTo(next ComplaintStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s ComplaintStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// Complaint is raised by a resident and triaged by an admin.
// OwnerID never changes after creation.
type Complaint struct {
	ID        string          `json:"id" bson:"_id"`
	OwnerID   string          `json:"user_id" bson:"user_id"`
	Issue     string          `json:"issue" bson:"issue"`
	Status    ComplaintStatus `json:"status" bson:"status"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// ComplaintOwner is the read-side projection of the user who raised a complaint.
type ComplaintOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ComplaintView is a complaint enriched with its owner for admin listings.
type ComplaintView struct {
	Complaint
	Owner *ComplaintOwner `json:"user,omitempty"`
}
