package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fitmind/fitmind/internal/ai"
	"github.com/fitmind/fitmind/internal/chat"
	"github.com/fitmind/fitmind/internal/config"
	"github.com/fitmind/fitmind/internal/db"
	"github.com/fitmind/fitmind/internal/metrics"
	"github.com/fitmind/fitmind/internal/store/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
)

const (
	maxAttempts = 3
	retryDelay  = 5 * time.Second
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if cfg.RabbitURL == "" {
		log.Fatalf("RABBIT_URL is required for the worker")
	}

	gdb := db.Connect(cfg.DBDSN)
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	relay, err := ai.NewRelayFromSettings(context.Background(), cfg.Relay())
	if err != nil {
		log.Fatalf("ai relay: %v", err)
	}
	svc := chat.NewService(chat.NewRepo(gdb), relay, cfg.ChatContextWindowSize)

	retrier, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit publisher: %v", err)
	}
	defer retrier.Close()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	//  strict concurrency control
	concurrency := cfg.WorkerConcurrency

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.JobMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				err := handleJob(ctx, svc, m.JobID)
				if err == nil {
					if err := d.Ack(false); err != nil {
						log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
					}
					continue
				}

				attempt := rabbitmq.Attempt(d.Headers) + 1
				log.Printf("worker=%d job %s failed attempt=%d cost=%s err=%v", workerID, m.JobID, attempt, time.Since(start), err)
				if retryable(err) && attempt < maxAttempts {
					if rerr := retrier.Retry(ctx, m.JobID, attempt, retryDelay*time.Duration(attempt)); rerr == nil {
						_ = d.Ack(false)
						continue
					}
				}
				finalizeFailed(ctx, svc, m.JobID, err)
				_ = d.Nack(false, false)
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}

// handleJob generates the assistant reply for one queued job. Relay problems
// are already folded into the reply text, so errors here are storage errors.
func handleJob(ctx context.Context, svc *chat.Service, jobID string) error {
	jobStart := time.Now()

	if err := svc.MarkJobRunning(ctx, jobID); err != nil {
		return err
	}

	j, err := svc.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	if j.Status == chat.JobSucceeded {
		// redelivered after a successful run
		return nil
	}

	_, assistantMsgID, err := svc.GenerateAssistantReplyAndInsert(ctx, j.UserID, j.SessionID)
	if err != nil {
		return err
	}

	if err := svc.MarkJobSucceeded(ctx, jobID, assistantMsgID); err != nil {
		return err
	}
	metrics.ChatJobs.WithLabelValues(string(chat.JobSucceeded)).Inc()

	if total := time.Since(jobStart); total > 2*time.Second {
		log.Printf("job_timing job=%s total=%s", jobID, total)
	}
	return nil
}

// retryable is false when the job or its session is gone; retrying cannot help.
func retryable(err error) bool {
	return !errors.Is(err, gorm.ErrRecordNotFound)
}

func finalizeFailed(ctx context.Context, svc *chat.Service, jobID string, cause error) {
	if err := svc.MarkJobFailed(ctx, jobID, cause.Error()); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("mark job failed job=%s err=%v", jobID, err)
	}
	metrics.ChatJobs.WithLabelValues(string(chat.JobFailed)).Inc()
}
