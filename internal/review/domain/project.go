package domain

import (
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ProjectStatus is the review state of a shared site.
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "pending"
	StatusInReview ProjectStatus = "in-review"
	StatusApproved ProjectStatus = "approved"
	StatusArchived ProjectStatus = "archived"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusArchived:
		return true
	}
	return false
}

// ErrInvalidURL reports a project URL that does not parse even after scheme
// normalization.
var ErrInvalidURL = errors.New("domain: invalid project url")

// Project is an in-progress client site shared for review.
type Project struct {
	ID             string
	Name           string
	Client         string // display name of the client org/person
	URL            string
	Description    string
	Thumbnail      string
	Status         ProjectStatus
	OrganizationID string
	CreatedBy      string

	AssignedClients    []string // user ids allowed to review
	AssignedDevelopers []string // user ids working on the site

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransition reports whether the status edge from -> to is allowed.
// pending -> in-review -> approved, with archived reachable from any
// non-terminal state. No edge is reversible.
func CanTransition(from, to ProjectStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusInReview || to == StatusArchived
	case StatusInReview:
		return to == StatusApproved || to == StatusArchived
	case StatusApproved:
		return to == StatusArchived
	default:
		return false
	}
}

// HasClient reports whether userID is an assigned reviewer.
func (p Project) HasClient(userID string) bool {
	return slices.Contains(p.AssignedClients, userID)
}

// NormalizeURL validates a project URL, prefixing https:// when the caller
// omitted a scheme. Malformed URLs are rejected rather than stored.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidURL
	}

	return u.String(), nil
}
