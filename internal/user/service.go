package user

import (
	"log/slog"

	errors "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/audit"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	Transaction(fn func(tx *gorm.DB) error) error
	GetByID(id int64) (*Profile, error)
	GetByExternalSub(tx *gorm.DB, externalSub string) (*Profile, error)
	Create(tx *gorm.DB, p *Profile, passwordHash string) error
	UpdateFields(tx *gorm.DB, id int64, updates map[string]interface{}) error
}

type Auditor interface {
	Append(tx *gorm.DB, orgID, actorID int64, action string, payload interface{}) error
}

type Service struct {
	repo    RepositoryAPI
	auditor Auditor
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *Service) GetProfile(actorID int64) (*Profile, error) {
	p, err := s.repo.GetByID(actorID)
	if err != nil {
		return nil, errors.ErrProfileNotFound
	}
	return p, nil
}

// ApplyIdentityEvent upserts the profile keyed by external_sub. Unknown
// subjects are only acceptable for profile.created; every applied event
// lands in the audit trail with the profile as actor.
func (s *Service) ApplyIdentityEvent(dto IdentityEventDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var applied *Profile
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.GetByExternalSub(tx, dto.ExternalSub)
		if err != nil && !errors.IsNotFound(err) {
			return err
		}

		switch dto.EventType {
		case EventProfileCreated:
			if existing != nil {
				// idempotent replay
				applied = existing
				return nil
			}
			role := dto.Role
			if role == "" {
				role = string(auth.RoleMember)
			}
			p := &Profile{
				OrgID:       dto.OrgID,
				Email:       dto.Email,
				DisplayName: dto.DisplayName,
				Role:        role,
				ExternalSub: dto.ExternalSub,
				IsActive:    true,
			}
			if err := s.repo.Create(tx, p, ""); err != nil {
				return err
			}
			applied = p

		case EventProfileRoleChanged:
			if existing == nil {
				return errors.ErrProfileNotFound
			}
			if err := s.repo.UpdateFields(tx, existing.ID, map[string]interface{}{"role": dto.Role}); err != nil {
				return err
			}
			existing.Role = dto.Role
			applied = existing

		case EventProfileDeactivated:
			if existing == nil {
				return errors.ErrProfileNotFound
			}
			if err := s.repo.UpdateFields(tx, existing.ID, map[string]interface{}{"is_active": false}); err != nil {
				return err
			}
			existing.IsActive = false
			applied = existing

		case EventProfileReactivated:
			if existing == nil {
				return errors.ErrProfileNotFound
			}
			if err := s.repo.UpdateFields(tx, existing.ID, map[string]interface{}{"is_active": true}); err != nil {
				return err
			}
			existing.IsActive = true
			applied = existing
		}

		return s.auditor.Append(tx, applied.OrgID, applied.ID, audit.ActionProfileWebhook, audit.ProfileWebhookPayload{
			ProfileID: applied.ID,
			EventType: dto.EventType,
			Role:      applied.Role,
			OrgID:     applied.OrgID,
		})
	})
	if err != nil {
		s.logger.Error("failed to apply identity event",
			"error", err,
			"event_type", dto.EventType,
			"external_sub", dto.ExternalSub)
		return nil, err
	}

	s.logger.Info("identity event applied",
		"event_type", dto.EventType,
		"profile_id", applied.ID)

	return applied, nil
}
