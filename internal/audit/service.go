package audit

import (
	"log/slog"

	"gorm.io/gorm"
)

// RepositoryAPI is insert-and-read-only. There is deliberately no update or
// delete: the audit trail is immutable.
type RepositoryAPI interface {
	Append(tx *gorm.DB, orgID, actorID int64, action string, payload interface{}) error
	ListByOrg(orgID int64, limit, offset int) ([]*Entry, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Append records a mutation inside the caller's transaction so the entry
// commits atomically with the state change it describes.
func (s *Service) Append(tx *gorm.DB, orgID, actorID int64, action string, payload interface{}) error {
	return s.repo.Append(tx, orgID, actorID, action, payload)
}

// AppendBestEffort is used outside transactions (failed mutations, webhook
// bookkeeping). A logging failure must never mask the original error, so it
// only logs.
func (s *Service) AppendBestEffort(orgID, actorID int64, action string, payload interface{}) {
	if err := s.repo.Append(nil, orgID, actorID, action, payload); err != nil {
		s.logger.Error("failed to append audit log entry",
			"error", err,
			"org_id", orgID,
			"actor_id", actorID,
			"action", action)
	}
}

func (s *Service) ListByOrg(orgID int64, limit, offset int) ([]*Entry, error) {
	entries, err := s.repo.ListByOrg(orgID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err, "org_id", orgID)
		return nil, err
	}
	return entries, nil
}
