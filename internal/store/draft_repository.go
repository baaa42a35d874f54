package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"autuacao-mobile/internal/model"
)

var ErrDraftNotFound = errors.New("draft not found")

type DraftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// List returns all stored reports, newest save first. This mirrors the
// prepend-on-new ordering of the original device storage.
func (r *DraftRepository) List(ctx context.Context) ([]model.AutoInfracao, error) {
	var autos []model.AutoInfracao
	err := r.db.WithContext(ctx).
		Order("saved_at DESC").
		Find(&autos).Error
	return autos, err
}

func (r *DraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AutoInfracao, error) {
	var auto model.AutoInfracao
	err := r.db.WithContext(ctx).First(&auto, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &auto, nil
}

// Upsert writes the full record, inserting when the id is unseen. The
// transaction serializes concurrent saves against the same store.
func (r *DraftRepository) Upsert(ctx context.Context, auto *model.AutoInfracao) error {
	auto.SavedAt = time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.AutoInfracao
		err := tx.First(&existing, "id = ?", auto.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(auto).Error
		case err != nil:
			return err
		default:
			return tx.Model(&model.AutoInfracao{}).
				Where("id = ?", auto.ID).
				Select("*").
				Updates(auto).Error
		}
	})
}

func (r *DraftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.AutoInfracao{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDraftNotFound
	}
	return nil
}
