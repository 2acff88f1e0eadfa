package models

import "time"

// Domain models. SQL-backed rows match db/migrations; document-backed records
// match the JSON schemas under db/seed/schemas.

type User struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Updated      int64  `json:"updated" db:"updated"`
	PasswordHash string `json:"-" db:"password_hash"`
}

type Preferences struct {
	Notifications bool `json:"notifications"`
	EmailUpdates  bool `json:"emailUpdates"`
}

type UserProfile struct {
	ID          int64       `json:"id" db:"id"`
	UserID      string      `json:"userId" db:"user_id"`
	Email       string      `json:"email" db:"email"`
	DisplayName string      `json:"displayName" db:"display_name"`
	PhotoURL    string      `json:"photoURL,omitempty" db:"photo_url"`
	Preferences Preferences `json:"preferences"`
	Created     int64       `json:"created" db:"created"`
	Updated     int64       `json:"updated" db:"updated"`
}

type DocumentSchema struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	SchemaJSON string `json:"schema_json" db:"schema_json"`
	Created    int64  `json:"created" db:"created"`
	Updated    int64  `json:"updated" db:"updated"`
}

type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type InterestStatus string

const (
	StatusInterested  InterestStatus = "interested"
	StatusStarted     InterestStatus = "started"
	StatusApplied     InterestStatus = "applied"
	StatusInterviewed InterestStatus = "interviewed"
	StatusRejected    InterestStatus = "rejected"
	StatusAccepted    InterestStatus = "accepted"
)

// InterestStatuses lists every status in lifecycle order.
var InterestStatuses = []InterestStatus{
	StatusInterested, StatusStarted, StatusApplied, StatusInterviewed, StatusRejected, StatusAccepted,
}

func (s InterestStatus) Valid() bool {
	for _, v := range InterestStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type InterestNote struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"userId"`
	Status    InterestStatus `json:"status,omitempty"`
}

type StatusHistoryEntry struct {
	Status    InterestStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Comment   string         `json:"comment,omitempty"`
	UserID    string         `json:"userId"`
}

// JobInterest is one user's relationship to one job.
type JobInterest struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	JobID         string               `json:"jobId"`
	Status        InterestStatus       `json:"status"`
	Notes         []InterestNote       `json:"notes"`
	StatusHistory []StatusHistoryEntry `json:"statusHistory"`
	Deadline      string               `json:"deadline,omitempty"`
	Priority      Priority             `json:"priority"`
	Tags          []string             `json:"tags"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type InterestWithJob struct {
	Interest JobInterest `json:"interest"`
	Job      *Job        `json:"job"`
}

type DeadlineAlert struct {
	Interest          JobInterest `json:"interest"`
	Job               Job         `json:"job"`
	DaysUntilDeadline int         `json:"daysUntilDeadline"`
}

type CoverageStats struct {
	Total        int     `json:"total"`
	Applied      int     `json:"applied"`
	Started      int     `json:"started"`
	Interested   int     `json:"interested"`
	CoverageRate float64 `json:"coverageRate"`
}
