package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmby204/SGE/internal/authz"
	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/jobs"
)

type calendarRepository interface {
	PlanningEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error)
	EvidenceEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error)
	ProgressEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error)
}

// CalendarConfig tunes event synthesis.
type CalendarConfig struct {
	MaxResults int
	Horizon    time.Duration
}

// CalendarService synthesizes a unified calendar from planning, evidence, and
// progress data. Upcoming deadline notifications go through a fire-and-forget
// queue; a dropped notification never fails the request that triggered it.
type CalendarService struct {
	repo     calendarRepository
	notifier *jobs.Queue
	logger   *zap.Logger
	config   CalendarConfig
}

// NewCalendarService constructs a CalendarService instance. The notifier may
// be nil when notifications are disabled.
func NewCalendarService(repo calendarRepository, notifier *jobs.Queue, logger *zap.Logger, config CalendarConfig) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 100
	}
	if config.Horizon <= 0 {
		config.Horizon = 30 * 24 * time.Hour
	}
	return &CalendarService{repo: repo, notifier: notifier, logger: logger, config: config}
}

// Events returns the caller's calendar inside the requested window, merged
// across sources and ordered by start time.
func (s *CalendarService) Events(ctx context.Context, claims *models.JWTClaims, filter models.CalendarFilter) ([]models.CalendarEvent, error) {
	filter.ProfessorID = authz.ScopeOwner(claims.Role, claims.UserID, filter.ProfessorID)

	now := time.Now().UTC()
	if filter.From.IsZero() {
		filter.From = now
	}
	if filter.To.IsZero() || filter.To.Before(filter.From) {
		filter.To = filter.From.Add(s.config.Horizon)
	}
	maxResults := filter.MaxResults
	if maxResults <= 0 || maxResults > s.config.MaxResults {
		maxResults = s.config.MaxResults
	}

	var events []models.CalendarEvent
	sources := []func(context.Context, models.CalendarFilter) ([]models.CalendarEvent, error){
		s.repo.PlanningEvents,
		s.repo.EvidenceEvents,
		s.repo.ProgressEvents,
	}
	for _, source := range sources {
		batch, err := source(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to synthesize calendar")
		}
		events = append(events, batch...)
	}

	if filter.Kind != "" {
		filtered := events[:0]
		for _, event := range events {
			if event.Kind == filter.Kind {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	if len(events) > maxResults {
		events = events[:maxResults]
	}
	return events, nil
}

// NotifyUpcoming enqueues a notification per event starting within the
// notice period. Drops are logged and swallowed.
func (s *CalendarService) NotifyUpcoming(ctx context.Context, claims *models.JWTClaims, notice time.Duration) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	if notice <= 0 {
		notice = 48 * time.Hour
	}

	now := time.Now().UTC()
	events, err := s.Events(ctx, claims, models.CalendarFilter{From: now, To: now.Add(notice)})
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, event := range events {
		err := s.notifier.TryEnqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    string(event.Kind),
			Payload: event,
		})
		if err != nil {
			s.logger.Warn("notification dropped", zap.String("event_id", event.ID), zap.Error(err))
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// NotificationHandler returns the queue handler that delivers event
// notifications. Delivery is a structured log entry; the queue contract stays
// the same if a real transport replaces it.
func NotificationHandler(logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(models.CalendarEvent)
		if !ok {
			logger.Warn("notification payload has unexpected type", zap.String("job_id", job.ID))
			return nil
		}
		logger.Info("calendar notification",
			zap.String("event_id", event.ID),
			zap.String("kind", string(event.Kind)),
			zap.String("title", event.Title),
			zap.Time("start", event.Start))
		return nil
	}
}
