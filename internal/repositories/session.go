package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"weaver/career-coach/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(session *models.Session) error
	FindByID(id uuid.UUID) (*models.Session, error)
	Update(session *models.Session) error
	Touch(id uuid.UUID) error
	FindIdleSince(cutoff time.Time, limit int) ([]models.Session, error)
	Delete(id uuid.UUID) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID loads the session together with its turns in sequence order.
func (r *sessionRepository) FindByID(id uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := r.db.
		Preload("Turns", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Update(session *models.Session) error {
	session.UpdatedAt = time.Now()
	result := r.db.Model(&models.Session{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"state":                 session.State,
			"resume_text":           session.ResumeText,
			"job_description_text":  session.JobDescriptionText,
			"processed_resume_name": session.ProcessedResumeName,
			"processed_jd_name":     session.ProcessedJDName,
			"generated_bullets":     session.GeneratedBullets,
			"last_active_at":        session.LastActiveAt,
			"updated_at":            session.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Touch(id uuid.UUID) error {
	result := r.db.Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_active_at": time.Now(),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to touch session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) FindIdleSince(cutoff time.Time, limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.
		Where("last_active_at < ?", cutoff).
		Order("last_active_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find idle sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes the session along with its turns and document records.
func (r *sessionRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.Turn{}).Error; err != nil {
			return fmt.Errorf("failed to delete session turns: %w", err)
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete session documents: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}
