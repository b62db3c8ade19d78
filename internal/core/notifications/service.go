package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

type notificationService struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
	}
}

// Notify appends a notification, stamping created/updated with the request
// time or now
func (s *notificationService) Notify(ctx context.Context, req NotifyRequest) (*Notification, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	ts := s.now().UTC()
	if req.CreatedAt != nil {
		ts = req.CreatedAt.UTC()
	}

	n := &Notification{
		RecipientID:  req.RecipientID,
		ActorID:      req.ActorID,
		ActivityID:   req.ActivityID,
		ActivityType: req.ActivityType,
		Kind:         req.Kind,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	s.logger.Debug("notification emitted",
		"id", n.ID,
		"type", n.Kind,
		"recipient", n.RecipientID,
		"actor", n.ActorID)

	return n, nil
}

func (s *notificationService) validateRequest(req NotifyRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(fe.Field(), fmt.Sprintf("failed '%s' validation", fe.Tag()))
	}
	return fmt.Errorf("failed to validate notification: %w", err)
}
