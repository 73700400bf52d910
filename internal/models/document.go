package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocTypeResume         = "resume"
	DocTypeJobDescription = "job_description"
)

// Document is the record of one uploaded file kept alongside the session so
// the stored copy can be cleaned up when the session expires.
type Document struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SessionID        uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Filename         string    `gorm:"type:text" json:"filename"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	DocType          string    `gorm:"type:text" json:"doc_type"`
	ContentType      string    `gorm:"type:text" json:"content_type"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	CreatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}
