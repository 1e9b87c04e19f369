package postgres

import (
	"errors"
	"time"

	internal "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	userDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/user"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements user.RepositoryAPI using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *UserRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *UserRepository) GetByID(id int64) (*user.Profile, error) {
	var row userDatamodel.UserProfile
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProfileNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByExternalSub(tx *gorm.DB, externalSub string) (*user.Profile, error) {
	var row userDatamodel.UserProfile
	err := r.conn(tx).Where("external_sub = ?", externalSub).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProfileNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) Create(tx *gorm.DB, p *user.Profile, passwordHash string) error {
	now := time.Now()
	row := &userDatamodel.UserProfile{
		OrgID:        p.OrgID,
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		PasswordHash: passwordHash,
		Role:         p.Role,
		ExternalSub:  p.ExternalSub,
		IsActive:     p.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.conn(tx).Create(row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepository) UpdateFields(tx *gorm.DB, id int64, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.conn(tx).Model(&userDatamodel.UserProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}
