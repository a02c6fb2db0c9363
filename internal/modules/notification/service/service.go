package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Marco3041/linkedin-clone/internal/entity"
	notifRepo "github.com/Marco3041/linkedin-clone/internal/modules/notification/repository"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

type NotificationService interface {
	// Notify appends one notification for userID.
	Notify(ctx context.Context, userID, message string) error
	// NotifyBestEffort is Notify for side effects: failures are logged and
	// never reach the caller.
	NotifyBestEffort(ctx context.Context, userID, message string)
	GetNotifications(ctx context.Context, userID string, limit int) ([]entity.Notification, error)
}

type notificationService struct {
	repo notifRepo.NotificationRepository
}

func NewNotificationService(repo notifRepo.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, userID, message string) error {
	if userID == "" || message == "" {
		return fmt.Errorf("%w: notification needs a target and a message", apperror.ErrInvalidInput)
	}

	if _, err := s.repo.Create(ctx, userID, message); err != nil {
		return fmt.Errorf("notify %s: %w", userID, err)
	}
	return nil
}

func (s *notificationService) NotifyBestEffort(ctx context.Context, userID, message string) {
	if err := s.Notify(ctx, userID, message); err != nil {
		log.Printf("⚠️ best-effort notification to %s dropped: %v", userID, err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
