// Package notification materializes reminders for upcoming events and pushes them to the
// participants of the events.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/config"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// TypeNotification is the type of the frame pushed to users.
const TypeNotification = "notification"

// Frame is the payload pushed to a user for a due notification.
type Frame struct {
	Type     string    `json:"type"`
	EventID  uuid.UUID `json:"eventId"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	Message  string    `json:"message"`
}

type eventFinder interface {
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

type notificationRepository interface {
	CreateIfAbsent(ctx context.Context, notification *model.Notification) (bool, error)
	FindDue(ctx context.Context, now time.Time) ([]model.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	PurgeSent(ctx context.Context, before time.Time) (int64, error)
}

type sender interface {
	SendToUser(userID uuid.UUID, payload any) bool
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewScheduler(logger *slog.Logger, events eventFinder, notifications notificationRepository, sender sender, now func() time.Time, config config.Notification) *Scheduler {
	offsets := slices.Clone(config.Offsets)
	slices.Sort(offsets)
	return &Scheduler{
		logger:        logger,
		events:        events,
		notifications: notifications,
		sender:        sender,
		now:           now,
		interval:      config.Interval,
		offsets:       slices.Compact(offsets),
		retention:     config.Retention,
	}
}

// Scheduler runs a tick on every interval. A tick creates a pending notification for every
// participant and offset of upcoming events, pushes every due notification and purges sent
// notifications older than the retention. A notification is marked as sent even if its user isn't
// connected.
type Scheduler struct {
	logger        *slog.Logger
	events        eventFinder
	notifications notificationRepository
	sender        sender
	now           func() time.Time
	interval      time.Duration
	offsets       []time.Duration
	retention     time.Duration

	lock sync.Mutex
	cron *cron.Cron
}

// Start schedules ticks until Stop is called. Ticks never overlap, a tick still running when the
// next one is due causes the next one to be skipped.
func (s *Scheduler) Start(ctx context.Context) {
	cronLogger := cronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		if err := s.Tick(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Notification tick failed", "error", err)
		}
	}))
	s.cron.Start()
	s.logger.InfoContext(ctx, "Notification scheduler started", "interval", s.interval, "offsets", s.offsets)
}

// Stop stops scheduling ticks and waits for a running tick to complete.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Notification scheduler stopped")
}

// Tick materializes, dispatches and purges notifications once. A failing store aborts the tick,
// the next tick retries.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now().UTC()

	created, err := s.materialize(ctx, now)
	if err != nil {
		return err
	}

	dispatched, err := s.dispatch(ctx, now)
	if err != nil {
		return err
	}

	purged, err := s.notifications.PurgeSent(ctx, now.Add(-s.retention))
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "Notification tick completed", "created", created, "dispatched", dispatched, "purged", purged)
	return nil
}

func (s *Scheduler) materialize(ctx context.Context, now time.Time) (int, error) {
	if len(s.offsets) == 0 {
		return 0, nil
	}

	// look one interval ahead so the largest offset is materialized before it's due
	events, err := s.events.FindStartingBetween(ctx, now, now.Add(s.offsets[len(s.offsets)-1]+s.interval))
	if err != nil {
		return 0, err
	}

	var created int
	for _, event := range events {
		for _, offset := range s.offsets {
			sendAt := event.Start.UTC().Add(-offset)
			if sendAt.Before(now) {
				continue
			}
			for _, participant := range event.Participants {
				ok, err := s.notifications.CreateIfAbsent(ctx, &model.Notification{
					UserID:  participant.UserID,
					EventID: event.ID,
					SendAt:  sendAt,
				})
				if err != nil {
					return created, err
				}
				if ok {
					created++
				}
			}
		}
	}
	return created, nil
}

func (s *Scheduler) dispatch(ctx context.Context, now time.Time) (int, error) {
	notifications, err := s.notifications.FindDue(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, notification := range notifications {
		if err := s.deliver(notification); err != nil {
			s.logger.InfoContext(ctx, "Notification not delivered", "notificationId", notification.ID, "userId", notification.UserID, "error", err)
		}

		if err := s.notifications.MarkSent(ctx, notification.ID, now); err != nil {
			return 0, err
		}
	}
	return len(notifications), nil
}

func (s *Scheduler) deliver(notification model.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while sending notification: %v", r)
		}
	}()

	if notification.Event == nil {
		return errdef.NewNotFound("event %q of notification %q not found", notification.EventID, notification.ID)
	}

	var name string
	if notification.User != nil {
		name = notification.User.DisplayName()
	}
	event := notification.Event
	frame := Frame{
		Type:     TypeNotification,
		EventID:  event.ID,
		Title:    event.Title,
		StartsAt: event.Start.UTC(),
		Message:  fmt.Sprintf("Reminder for %s: %q starts at %s", name, event.Title, event.Start.UTC().Format(time.RFC3339)),
	}
	if !s.sender.SendToUser(notification.UserID, frame) {
		return errdef.NewDeliveryUnavailable("user %q isn't connected", notification.UserID)
	}
	return nil
}

// cronLogger logs cron messages using slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
