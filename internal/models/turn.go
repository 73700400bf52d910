package models

import (
	"time"

	"github.com/google/uuid"
)

type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// TurnKind records which prompt template produced (or will produce) an
// assistant turn. Plain user messages use KindMessage.
type TurnKind string

const (
	KindMessage        TurnKind = "message"
	KindResumeAnalysis TurnKind = "resume_analysis"
	KindJDTailoring    TurnKind = "jd_tailoring"
	KindFollowUp       TurnKind = "follow_up"
)

// Turn is one role-tagged message in a session transcript. A nil Body marks
// an assistant turn that is still pending a streamed response; the transcript
// shown to the client contains only turns with a body.
type Turn struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Seq       int       `gorm:"not null" json:"seq"`
	Role      TurnRole  `gorm:"type:text;not null" json:"role"`
	Kind      TurnKind  `gorm:"type:text;not null" json:"kind"`
	Body      *string   `gorm:"type:text" json:"body,omitempty"`
	CreatedAt time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (Turn) TableName() string {
	return "turns"
}

// Pending reports whether the turn is still awaiting its streamed body.
func (t *Turn) Pending() bool {
	return t.Body == nil
}
