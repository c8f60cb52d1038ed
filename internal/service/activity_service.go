package service

import (
	"context"
	"encoding/json"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ActivityResponse is the serialized audit trail row.
type ActivityResponse struct {
	ID          string  `json:"id"`
	UserID      *string `json:"user_id"`
	Username    string  `json:"username"`
	Model       string  `json:"model"`
	RecordID    string  `json:"record_id"`
	Action      string  `json:"action"`
	Description string  `json:"description"`
	Details     string  `json:"details"`
	CreatedAt   string  `json:"created_at"`
}

type ActivityService interface {
	// Record writes one audit row. Callers inside a transaction pass the tx
	// context so the row commits or rolls back with the mutation.
	Record(ctx context.Context, actorID *uuid.UUID, entity, recordID, action, description string, details interface{}) error
	List(ctx context.Context, params pagination.Params, filter repository.ActivityFilter) ([]ActivityResponse, int64, error)
}

type activityService struct {
	repo repository.ActivityRepository
	log  logrus.FieldLogger
}

func NewActivityService(repo repository.ActivityRepository, log logrus.FieldLogger) ActivityService {
	return &activityService{repo: repo, log: log}
}

func (s *activityService) Record(ctx context.Context, actorID *uuid.UUID, entity, recordID, action, description string, details interface{}) error {
	payload := ""
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = string(raw)
		}
	}

	entry := &model.ActivityLog{
		UserID:      actorID,
		Model:       entity,
		RecordID:    recordID,
		Action:      action,
		Description: description,
		Details:     payload,
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		// Fire-and-forget from the caller's perspective, but inside a tx the
		// failure still aborts the whole operation.
		s.log.WithError(err).WithField("action", action).Warn("activity log write failed")
		return err
	}
	return nil
}

func (s *activityService) List(ctx context.Context, params pagination.Params, filter repository.ActivityFilter) ([]ActivityResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, params, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ActivityResponse, 0, len(logs))
	for _, entry := range logs {
		row := ActivityResponse{
			ID:          entry.ID.String(),
			Model:       entry.Model,
			RecordID:    entry.RecordID,
			Action:      entry.Action,
			Description: entry.Description,
			Details:     entry.Details,
			CreatedAt:   entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if entry.UserID != nil {
			id := entry.UserID.String()
			row.UserID = &id
		}
		if entry.User != nil {
			row.Username = entry.User.Username
		}
		res = append(res, row)
	}

	return res, total, nil
}
