package domain

import "time"

// FeedbackType classifies a review comment.
type FeedbackType string

const (
	FeedbackGeneral  FeedbackType = "general"
	FeedbackBug      FeedbackType = "bug"
	FeedbackChange   FeedbackType = "change"
	FeedbackApproval FeedbackType = "approval"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackGeneral, FeedbackBug, FeedbackChange, FeedbackApproval:
		return true
	}
	return false
}

// FeedbackPriority orders the backlog.
type FeedbackPriority string

const (
	PriorityLow    FeedbackPriority = "low"
	PriorityMedium FeedbackPriority = "medium"
	PriorityHigh   FeedbackPriority = "high"
)

func (p FeedbackPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// FeedbackStatus tracks resolution of a comment.
type FeedbackStatus string

const (
	FeedbackOpen       FeedbackStatus = "open"
	FeedbackInProgress FeedbackStatus = "in-progress"
	FeedbackResolved   FeedbackStatus = "resolved"
)

func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackOpen, FeedbackInProgress, FeedbackResolved:
		return true
	}
	return false
}

// Feedback is a structured review comment on a project. Approval-type
// feedback is created pre-resolved.
type Feedback struct {
	ID        string
	ProjectID string
	Type      FeedbackType
	Priority  FeedbackPriority
	Text      string
	Status    FeedbackStatus

	AuthorID   string
	AuthorName string
	AuthorRole Role

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
	ResolvedBy string
}
