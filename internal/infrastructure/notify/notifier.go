package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// Log writes every notification to the application log.
type Log struct {
	logger *logrus.Logger
}

func NewLog(logger *logrus.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, n entity.Notification) {
	entry := l.logger.WithFields(logrus.Fields{"action": n.Action, "post_id": n.PostID})
	switch n.Level {
	case entity.LevelError:
		entry.Error(n.Message)
	case entity.LevelWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}

// Publisher is the part of helpers.RabbitPublisher the notifier needs.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Rabbit forwards notifications to a queue so other processes (cmd/notify_worker) can
// deliver them. A failed publish is logged and dropped.
type Rabbit struct {
	pub     Publisher
	logger  *logrus.Logger
	timeout time.Duration
}

func NewRabbit(pub Publisher, logger *logrus.Logger) *Rabbit {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Rabbit{pub: pub, logger: logger, timeout: 3 * time.Second}
}

func (r *Rabbit) Notify(ctx context.Context, n entity.Notification) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.pub.PublishJSON(ctx, n); err != nil {
		helpers.LogWarn(r.logger, "notification publish failed", err, logrus.Fields{"action": n.Action})
	}
}

// Multi delivers to every notifier in order.
type Multi []repo.Notifier

func (m Multi) Notify(ctx context.Context, n entity.Notification) {
	for _, target := range m {
		target.Notify(ctx, n)
	}
}
