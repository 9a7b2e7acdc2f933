package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"nlustudio/internal/model"
	"nlustudio/internal/repository"
)

// EpochPersistWorker drains training epoch records off the queue and writes
// them to the training_history table, keeping the training request itself off
// the hot path.
type EpochPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.TrainingHistoryRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEpochPersistWorker(conn *amqp.Connection, repo *repository.TrainingHistoryRepository, queueName string) *EpochPersistWorker {
	return &EpochPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *EpochPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var record model.TrainingHistory
				if err := json.Unmarshal(d.Body, &record); err != nil {
					log.Printf("worker decode epoch record failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&record); err != nil {
					log.Printf("worker persist epoch record failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *EpochPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
