package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/ats-engine/internal/repositories"
)

// Worker is the background repair loop for the partial-failure window between
// the vector index and the structured record: it polls failed ingestions
// still under the attempt cap and re-runs the full pipeline from the
// persisted upload. The pipeline is idempotent end to end, so a re-run
// reconverges both stores.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(ingestionID uuid.UUID)
}

type worker struct {
	ingestionRepo repositories.IngestionRepository
	ingestor      Ingestor
	concurrency   int
	maxAttempts   int
	pollInterval  time.Duration
	queue         chan uuid.UUID
	wg            sync.WaitGroup
	stopChan      chan struct{}
	logger        *zap.Logger
}

func NewWorker(
	ingestionRepo repositories.IngestionRepository,
	ingestor Ingestor,
	concurrency int,
	maxAttempts int,
	pollInterval time.Duration,
	logger *zap.Logger,
) Worker {
	return &worker{
		ingestionRepo: ingestionRepo,
		ingestor:      ingestor,
		concurrency:   concurrency,
		maxAttempts:   maxAttempts,
		pollInterval:  pollInterval,
		queue:         make(chan uuid.UUID, 100),
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting repair worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processQueue(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollFailed(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("repair worker stopped")
}

// Enqueue implements Worker.
func (w *worker) Enqueue(ingestionID uuid.UUID) {
	select {
	case w.queue <- ingestionID:
	case <-w.stopChan:
		w.logger.Warn("worker stopped, dropping ingestion",
			zap.String("ingestion_id", ingestionID.String()))
	}
}

func (w *worker) processQueue(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case ingestionID := <-w.queue:
			log := w.logger.With(
				zap.Int("worker", workerID),
				zap.String("ingestion_id", ingestionID.String()),
			)
			log.Info("retrying ingestion")

			if _, err := w.ingestor.Run(ctx, ingestionID); err != nil {
				log.Warn("retry failed", zap.Error(err))
			} else {
				log.Info("retry succeeded")
			}
		}
	}
}

func (w *worker) pollFailed(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			retryable, err := w.ingestionRepo.FindRetryable(w.maxAttempts, 10)
			if err != nil {
				w.logger.Warn("failed to poll retryable ingestions", zap.Error(err))
				continue
			}

			for _, ingestion := range retryable {
				w.Enqueue(ingestion.ID)
			}
		}
	}
}
