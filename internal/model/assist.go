package model

import (
	"time"

	"github.com/google/uuid"
)

// ExistingLists names the lists a user already has, per category.
type ExistingLists struct {
	People   []string
	Projects []string
	Actions  []string
}

// Empty reports whether no list name is known.
func (l ExistingLists) Empty() bool {
	return len(l.People) == 0 && len(l.Projects) == 0 && len(l.Actions) == 0
}

// CategorizeParams asks the model to classify free-form task text. UserID is
// uuid.Nil for callers without a session.
type CategorizeParams struct {
	UserID        uuid.UUID
	Text          string
	ExistingLists ExistingLists
	Context       string
	APIKey        string
}

// Categorization is the normalized classification of a task text.
type Categorization struct {
	Category Category
	ListName string
	Text     string
	Tags     []string
	DueDate  *string
}

// BriefingMode selects what a briefing request produces.
type BriefingMode string

const (
	BriefingModeNarrative  BriefingMode = "briefing"
	BriefingModePrioritize BriefingMode = "prioritize"
	BriefingModeBoth       BriefingMode = "both"
)

// Valid reports whether m is a known mode.
func (m BriefingMode) Valid() bool {
	switch m {
	case BriefingModeNarrative, BriefingModePrioritize, BriefingModeBoth:
		return true
	}
	return false
}

// BriefingParams describes a briefing request over the caller's open tasks.
type BriefingParams struct {
	UserID        uuid.UUID
	Mode          BriefingMode
	ListName      string
	Category      string
	CustomContext string
}

// Urgency buckets a priority score.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// UrgencyForScore maps a 0-100 score to its bucket.
func UrgencyForScore(score int) Urgency {
	switch {
	case score >= 80:
		return UrgencyCritical
	case score >= 60:
		return UrgencyHigh
	case score >= 40:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// PrioritizedTask is one entry of a ranked task list.
type PrioritizedTask struct {
	ID      string
	Text    string
	Score   int
	Urgency Urgency
	Reason  string
}

// Briefing is the result of a briefing request.
type Briefing struct {
	Mode        BriefingMode
	TaskCount   int
	Narrative   string
	Prioritized []PrioritizedTask
	GeneratedAt time.Time
	Model       string
}
