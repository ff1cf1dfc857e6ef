package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/config"
	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/notify"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

var errEmptyMessage = errors.New("notification without message")

// notify_worker drains the notification queue and records every toast in the log,
// for installs where the UI is not attached.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotificationQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQNotificationQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQNotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx := context.Background()
	sink := notify.NewLog(logger)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			n, err := decodeNotification(msg.Body)
			if err != nil {
				helpers.LogWarn(logger, "bad notification message", err, logrus.Fields{"message_id": msg.MessageId})
				_ = msg.Nack(false, false)
				continue
			}
			if n.At.IsZero() {
				n.At = msg.Timestamp
			}
			sink.Notify(ctx, n)
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("notification worker listening on queue=%s", cfg.RabbitMQNotificationQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func decodeNotification(body []byte) (entity.Notification, error) {
	var n entity.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return n, err
	}
	if n.Message == "" {
		return n, errEmptyMessage
	}
	if n.Level == "" {
		n.Level = entity.LevelInfo
	}
	return n, nil
}
