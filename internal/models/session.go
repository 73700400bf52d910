package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the explicit document-loading state of a coaching session.
// Transitions only move forward: empty -> resume_loaded -> resume_and_jd_loaded.
type SessionState string

const (
	StateEmpty        SessionState = "empty"
	StateResumeLoaded SessionState = "resume_loaded"
	StateResumeAndJD  SessionState = "resume_and_jd_loaded"
)

// Session holds everything one visitor accumulates during a coaching visit:
// the extracted document texts, upload bookkeeping, and the chat transcript.
type Session struct {
	ID                  uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	State               SessionState `gorm:"type:text;not null;default:'empty'" json:"state"`
	ResumeText          string       `gorm:"type:text" json:"-"`
	JobDescriptionText  string       `gorm:"type:text" json:"-"`
	ProcessedResumeName string       `gorm:"type:text" json:"processed_resume_name,omitempty"`
	ProcessedJDName     string       `gorm:"type:text" json:"processed_jd_name,omitempty"`
	GeneratedBullets    string       `gorm:"type:text" json:"-"`
	LastActiveAt        time.Time    `gorm:"type:timestamp;not null" json:"last_active_at"`
	CreatedAt           time.Time    `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"type:timestamp;default:now()" json:"updated_at"`

	Turns []Turn `gorm:"foreignKey:SessionID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}

// HasResume reports whether a resume has been loaded into the session.
func (s *Session) HasResume() bool {
	return s.State == StateResumeLoaded || s.State == StateResumeAndJD
}
