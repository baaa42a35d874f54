package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autuacao-mobile/internal/model"
)

var ErrNoIdentity = errors.New("no stored identity")

// identityRow is the single-row table holding the current session identity,
// so the app restores a logged-in inspector without network access.
type identityRow struct {
	Key             string `gorm:"primaryKey;type:varchar(16)"`
	IDUsuario       int
	IDFuncionario   int
	NomeFuncionario string `gorm:"type:varchar(255)"`
	Username        string `gorm:"type:varchar(64)"`
	Sigla           string `gorm:"type:varchar(16)"`
}

func (identityRow) TableName() string {
	return "identity"
}

const identityKey = "current"

type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Get(ctx context.Context) (model.Principal, error) {
	var row identityRow
	err := r.db.WithContext(ctx).First(&row, "key = ?", identityKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Principal{}, ErrNoIdentity
		}
		return model.Principal{}, err
	}
	return model.Principal{
		IDUsuario:       row.IDUsuario,
		IDFuncionario:   row.IDFuncionario,
		NomeFuncionario: row.NomeFuncionario,
		Username:        row.Username,
		Sigla:           row.Sigla,
	}, nil
}

func (r *IdentityRepository) Set(ctx context.Context, p model.Principal) error {
	row := identityRow{
		Key:             identityKey,
		IDUsuario:       p.IDUsuario,
		IDFuncionario:   p.IDFuncionario,
		NomeFuncionario: p.NomeFuncionario,
		Username:        p.Username,
		Sigla:           p.Sigla,
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *IdentityRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Delete(&identityRow{}, "key = ?", identityKey).Error
}
