package job

import (
	"context"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	notifService "github.com/Marco3041/linkedin-clone/internal/modules/notification/service"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

type JobService interface {
	ListJobs(ctx context.Context) ([]entity.Job, error)
	// ApplyToJob records the application and then tells the applicant. The
	// notification is best effort: once the application is stored the call
	// succeeds whatever happens to the notification.
	ApplyToJob(ctx context.Context, applicantID, jobID string) (string, error)
}

type jobService struct {
	store               docstore.Store
	notificationService notifService.NotificationService
}

func NewJobService(store docstore.Store, notificationService notifService.NotificationService) JobService {
	return &jobService{store: store, notificationService: notificationService}
}

func JobsQuery() docstore.Query {
	return docstore.Query{Collection: entity.CollectionJobs}
}

func AppliedMessage(company string) string {
	return fmt.Sprintf("You successfully applied for the position at %s", company)
}

func (s *jobService) ListJobs(ctx context.Context) ([]entity.Job, error) {
	docs, err := s.store.Query(ctx, JobsQuery())
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs := make([]entity.Job, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, entity.JobFromDocument(doc))
	}
	return jobs, nil
}

func (s *jobService) ApplyToJob(ctx context.Context, applicantID, jobID string) (string, error) {
	if applicantID == "" || jobID == "" {
		return "", fmt.Errorf("%w: applicant and job are required", apperror.ErrInvalidInput)
	}

	doc, err := s.store.Get(ctx, entity.JobPath(jobID))
	if err != nil {
		return "", fmt.Errorf("load job %s: %w", jobID, err)
	}
	job := entity.JobFromDocument(*doc)

	id, err := s.store.Insert(ctx, entity.CollectionApplications, map[string]any{
		entity.FieldUserID:    applicantID,
		"jobId":               jobID,
		entity.FieldTimestamp: docstore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("apply to %s: %w", jobID, err)
	}

	s.notificationService.NotifyBestEffort(ctx, applicantID, AppliedMessage(job.Company))
	return id, nil
}
