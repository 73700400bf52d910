package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"weaver/career-coach/internal/models"
)

var ErrTurnNotFound = errors.New("turn not found")

type TurnRepository interface {
	Append(turn *models.Turn) error
	SetBody(id uuid.UUID, body string) error
}

type turnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) TurnRepository {
	return &turnRepository{db: db}
}

func (r *turnRepository) Append(turn *models.Turn) error {
	if err := r.db.Create(turn).Error; err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// SetBody fills in the streamed response of a pending assistant turn.
func (r *turnRepository) SetBody(id uuid.UUID, body string) error {
	result := r.db.Model(&models.Turn{}).
		Where("id = ?", id).
		Update("body", body)

	if result.Error != nil {
		return fmt.Errorf("failed to set turn body: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTurnNotFound
	}
	return nil
}
