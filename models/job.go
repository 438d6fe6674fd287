package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType identifies the pipeline stage a queued job executes
type JobType string

const (
	JobTypeScrapeAgents    JobType = "scrape_agents"
	JobTypeProcessCampaign JobType = "process_campaign"
	JobTypeProcessOutbox   JobType = "process_outbox"
)

// String returns the string representation of the job type
func (t JobType) String() string {
	return string(t)
}

// Valid checks if the job type is valid
func (t JobType) Valid() bool {
	switch t {
	case JobTypeScrapeAgents, JobTypeProcessCampaign, JobTypeProcessOutbox:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for JobType
func (t *JobType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = JobType(v)
	case []byte:
		*t = JobType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into JobType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for JobType
func (t JobType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid JobType: %s", t)
	}
	return string(t), nil
}

// JobStatus represents the execution status of a queued job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// String returns the string representation of the status
func (s JobStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusProcessing
	case JobStatusProcessing:
		return target == JobStatusCompleted || target == JobStatusFailed || target == JobStatusPending
	case JobStatusCompleted, JobStatusFailed:
		return false
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for JobStatus
func (s *JobStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = JobStatus(v)
	case []byte:
		*s = JobStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into JobStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for JobStatus
func (s JobStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid JobStatus: %s", s)
	}
	return string(s), nil
}

// Job is a queued unit of pipeline work. Payload carries the type-specific
// arguments as jsonb (campaign id, scrape location, page bounds).
type Job struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_jobs_uuid" json:"uuid"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_jobs_user_id" json:"user_id"`

	Type    JobType         `gorm:"column:job_type;type:job_type;not null" json:"job_type"`
	Payload json.RawMessage `gorm:"type:jsonb" json:"payload,omitempty"`

	Status       JobStatus  `gorm:"type:job_status;not null;default:'pending';index:idx_jobs_status" json:"status"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_jobs_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Job) TableName() string {
	return "job_queue"
}

// BeforeCreate is called before creating a new record
func (j *Job) BeforeCreate() error {
	if j.UUID == uuid.Nil {
		j.UUID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	return nil
}

// JobFilter represents filter criteria for jobs
type JobFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Type          *JobType   `json:"type,omitempty"`
	Status        *JobStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}

// ScrapeAgentsPayload is the payload for scrape_agents jobs.
type ScrapeAgentsPayload struct {
	CampaignID uint   `json:"campaign_id"`
	Location   string `json:"location"`
	StartPage  int    `json:"start_page,omitempty"`
	EndPage    int    `json:"end_page,omitempty"`
}

// ProcessCampaignPayload is the payload for process_campaign jobs.
type ProcessCampaignPayload struct {
	CampaignID uint `json:"campaign_id"`
}

// ProcessOutboxPayload is the payload for process_outbox jobs.
type ProcessOutboxPayload struct {
	CampaignID uint `json:"campaign_id,omitempty"`
}
