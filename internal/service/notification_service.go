package service

import (
	"context"
	"sync"
	"time"

	"cybot-be/internal/pkg/logger"
	"cybot-be/internal/pkg/mailer"
	"cybot-be/pkg/complaint/dialogue"
	"cybot-be/pkg/events"
	pktNats "cybot-be/pkg/nats"
	"cybot-be/pkg/ticketing"
)

const publishTimeout = 5 * time.Second

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// SessionNotifier pushes a message to whoever is connected to a chat
// session. Typically implemented by the WebSocket Hub.
type SessionNotifier interface {
	NotifySession(sessionID string, kind string, data map[string]interface{})
}

// NotificationService fans complaint outcomes out to the event bus, the
// confirmation mailer and live chat connections. Without a publisher,
// events are handled in-process.
type NotificationService struct {
	publisher  EventPublisher
	subscriber EventSubscriber
	mailer     mailer.IEmailService
	delivery   SessionNotifier
	logger     logger.ILogger

	wg sync.WaitGroup
}

var _ dialogue.FilingListener = &NotificationService{}

// NewNotificationService accepts nil for any of publisher, subscriber,
// mailer and delivery.
func NewNotificationService(pub EventPublisher, sub EventSubscriber, mail mailer.IEmailService, delivery SessionNotifier, log logger.ILogger) *NotificationService {
	return &NotificationService{
		publisher:  pub,
		subscriber: sub,
		mailer:     mail,
		delivery:   delivery,
		logger:     log,
	}
}

// Start attaches durable consumers for complaint events.
func (s *NotificationService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	for eventType, durable := range map[string]string{
		events.TypeComplaintFiled:        "complaint-filed-notifier",
		events.TypeComplaintSubmitFailed: "complaint-failed-notifier",
	} {
		if err := s.subscriber.Subscribe(ctx, eventType, durable, s.HandleEvent); err != nil {
			return err
		}
	}
	s.logger.Info("EVENTS", "Complaint notification consumers started", nil)
	return nil
}

func (s *NotificationService) ComplaintFiled(ctx context.Context, sessionID string, receipt ticketing.Receipt, sub ticketing.Submission) {
	s.emit(ctx, events.NewComplaintFiled(sessionID, receipt.ID, sub.Name, sub.Phone, sub.Email, sub.Details))
}

func (s *NotificationService) ComplaintSubmitFailed(ctx context.Context, sessionID string, sub ticketing.Submission, err error) {
	s.emit(ctx, events.NewComplaintSubmitFailed(sessionID, sub.Name, sub.Email, err))
}

func (s *NotificationService) emit(ctx context.Context, event events.BaseEvent) {
	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		err := s.publisher.Publish(pubCtx, event)
		if err == nil {
			return
		}
		s.logger.Warn("EVENTS", "Publish failed, handling event in-process", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.HandleEvent(context.Background(), event); err != nil {
			s.logger.Error("EVENTS", "In-process event handling failed", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}()
}

// Wait blocks until in-process deliveries have finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.BaseEvent)
	if !ok {
		ev = events.BaseEvent{Type: event.EventType(), Data: event.Payload(), OccurredAt: event.Timestamp()}
	}
	sessionID := ev.String("session_id")

	switch ev.EventType() {
	case events.TypeComplaintFiled:
		if s.delivery != nil && sessionID != "" {
			s.delivery.NotifySession(sessionID, "complaint_filed", map[string]interface{}{
				"complaint_id": ev.String("complaint_id"),
			})
		}
		email := ev.String("email")
		if s.mailer == nil || email == "" {
			return nil
		}
		return s.mailer.SendComplaintConfirmation(email, mailer.ComplaintConfirmation{
			Name:        ev.String("name"),
			ComplaintID: ev.String("complaint_id"),
			Details:     ev.String("details"),
		})

	case events.TypeComplaintSubmitFailed:
		s.logger.Warn("EVENTS", "Complaint submission failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      ev.String("error"),
		})
		if s.delivery != nil && sessionID != "" {
			s.delivery.NotifySession(sessionID, "complaint_submit_failed", map[string]interface{}{
				"error": ev.String("error"),
			})
		}
	}
	return nil
}
