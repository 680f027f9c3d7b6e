package worker

import (
	"CloudVault/config"
	"CloudVault/internal/mq"
	"CloudVault/internal/task"
	"CloudVault/utils"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type dlqMessage struct {
	TaskID   uint64    `json:"task_id"`
	Attempt  int       `json:"attempt"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// RunNotifyWorker consumes notification tasks from RabbitMQ until ctx
// is cancelled.
func RunNotifyWorker(ctx context.Context) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := config.AppConfig.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueNotify,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	concurrency := config.AppConfig.NotifyWorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	limiter := newLimiter(config.AppConfig.NotifyRate, config.AppConfig.NotifyBurst)

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("notify worker: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handleMessage(ctx, client, limiter, d)
			}(delivery)
		}
	}
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func handleMessage(ctx context.Context, client *mq.Client, limiter *rate.Limiter, delivery amqp.Delivery) {
	var msg mq.NotifyMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		log.Printf("notify worker: invalid message: %v", err)
		_ = delivery.Ack(false)
		return
	}

	if err := limiter.Wait(ctx); err != nil {
		_ = delivery.Nack(false, true)
		return
	}

	if err := task.ProcessNotifyTask(ctx, msg.TaskID); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = delivery.Nack(false, true)
			return
		}
		var handleErr error
		if shouldRetry(err) {
			handleErr = scheduleRetry(ctx, client, msg, err)
		} else {
			handleErr = markFailed(ctx, client, msg, err)
		}
		if handleErr != nil {
			log.Printf("notify worker: task %d bookkeeping failed: %v", msg.TaskID, handleErr)
			_ = delivery.Nack(false, true)
			return
		}
	}

	_ = delivery.Ack(false)
}

func shouldRetry(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, utils.ErrSMTPConfigMissing) {
		return false
	}
	return true
}

func scheduleRetry(ctx context.Context, client *mq.Client, msg mq.NotifyMessage, procErr error) error {
	maxRetry := config.AppConfig.NotifyRetryMax
	nextAttempt := msg.Attempt + 1
	if maxRetry <= 0 || nextAttempt > maxRetry {
		return markFailed(ctx, client, msg, procErr)
	}

	delay := pickRetryDelay(nextAttempt, config.AppConfig.NotifyRetryDelays)
	if err := task.MarkRetrying(ctx, msg.TaskID, nextAttempt, time.Now().Add(delay), procErr); err != nil {
		return err
	}
	msg.Attempt = nextAttempt
	return client.PublishRetry(ctx, msg, delay)
}

func markFailed(ctx context.Context, client *mq.Client, msg mq.NotifyMessage, procErr error) error {
	task.MarkFailed(ctx, msg.TaskID, procErr)

	body, err := json.Marshal(dlqMessage{
		TaskID:   msg.TaskID,
		Attempt:  msg.Attempt,
		Error:    procErr.Error(),
		FailedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	if err := client.PublishDLQ(ctx, body); err != nil {
		log.Printf("notify worker: dlq publish failed: %v", err)
	}
	return nil
}

func pickRetryDelay(attempt int, delays []time.Duration) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	index := attempt - 1
	if index < 0 {
		index = 0
	}
	if index >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[index]
}
