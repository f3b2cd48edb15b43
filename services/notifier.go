package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/metrics"
	"github.com/yeremiapane/site-engineer-app/utils"
)

const sendTimeout = 45 * time.Second

// Notifier is the mail side of event dispatch: a bounded queue drained by a
// fixed pool of workers. Publish never blocks; a full queue drops the event.
type Notifier struct {
	composer *MailComposer
	mailer   Mailer
	workers  int

	mu     sync.RWMutex
	queue  chan events.Event
	closed bool
	wg     sync.WaitGroup
}

func NewNotifier(composer *MailComposer, mailer Mailer, workers, queueSize int) *Notifier {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Notifier{
		composer: composer,
		mailer:   mailer,
		workers:  workers,
		queue:    make(chan events.Event, queueSize),
	}
}

// Start launches the workers. Mail is sent under ctx.
func (n *Notifier) Start(ctx context.Context) {
	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			for e := range n.queue {
				metrics.NotificationQueueDepth.Dec()
				n.handle(ctx, e)
			}
		}()
	}
	utils.InfoLogger.Infof("Notifier started with %d workers", n.workers)
}

// Stop refuses new events and waits for the queue to drain.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	n.wg.Wait()
	utils.InfoLogger.Info("Notifier stopped")
}

func (n *Notifier) Publish(_ context.Context, e events.Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.drop(e, "notifier stopped")
		return
	}
	select {
	case n.queue <- e:
		metrics.NotificationQueueDepth.Inc()
	default:
		n.drop(e, "queue full")
	}
}

func (n *Notifier) drop(e events.Event, reason string) {
	metrics.NotificationsTotal.WithLabelValues(string(e.Type), "dropped").Inc()
	utils.ErrorLogger.WithField("event", e.Type).Errorf("Notification dropped: %s", reason)
}

// handle composes and sends the mail for one event. Every failure, panics
// included, ends here as a log line.
func (n *Notifier) handle(ctx context.Context, e events.Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationsTotal.WithLabelValues(string(e.Type), "failed").Inc()
			utils.ErrorLogger.WithField("event", e.Type).Errorf("Notification panicked: %v", r)
		}
	}()

	messages, err := n.composer.Compose(ctx, e)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(e.Type), "failed").Inc()
		utils.ErrorLogger.WithField("event", e.Type).WithError(err).Error("Failed to compose notification")
		return
	}

	for _, msg := range messages {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		result, err := n.mailer.Send(sendCtx, msg)
		cancel()

		fields := logrus.Fields{"event": e.Type, "to": msg.To, "subject": msg.Subject}
		if err != nil || result == nil || !result.Success {
			if result != nil {
				fields["code"] = result.ErrorCode
				fields["transient"] = result.IsTransient
			}
			metrics.NotificationsTotal.WithLabelValues(string(e.Type), "failed").Inc()
			utils.ErrorLogger.WithFields(fields).WithError(err).Error("Failed to send notification")
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(string(e.Type), "sent").Inc()
		utils.InfoLogger.WithFields(fields).Info("Notification sent")
	}
}
