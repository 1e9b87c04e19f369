package auth

import (
	"database/sql"
	"fmt"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash string
	var actorID int64
	query := `SELECT id, password_hash FROM user_profiles WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&actorID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, fmt.Errorf("user not found")
		}
		return "", 0, err
	}
	return passwordHash, actorID, nil
}

func (r *Repository) GetActorByID(actorID int64) (*auth.Actor, error) {
	var actor auth.Actor
	var role string

	query := `SELECT id, org_id, email, display_name, role FROM user_profiles WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, actorID).Row()
	if err := row.Scan(&actor.ID, &actor.OrgID, &actor.Email, &actor.DisplayName, &role); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	actor.Role = auth.ParseRole(role)
	return &actor, nil
}
