package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"url-shortener-service/db"
	"url-shortener-service/handlers"
	"url-shortener-service/models"
)

const (
	NumWorkers   = 4
	BatchSize    = 100
	BatchTimeout = 5 * time.Second

	flushTimeout = 10 * time.Second
)

// StartWorkers runs the click worker pool until ctx is canceled,
// then drains pending batches before returning.
func StartWorkers(ctx context.Context, store db.Store) {
	var wg sync.WaitGroup

	for i := 0; i < NumWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(ctx, id, store)
		}(i)
	}

	log.Printf("Started %d click workers", NumWorkers)

	<-ctx.Done()
	wg.Wait()
	log.Println("All click workers stopped")
}

func worker(ctx context.Context, id int, store db.Store) {
	batch := make([]models.ClickEvent, 0, BatchSize)
	ticker := time.NewTicker(BatchTimeout)
	defer ticker.Stop()

	for {
		select {
		case event := <-handlers.ClickQueue:
			batch = append(batch, event)
			if len(batch) >= BatchSize {
				flushBatch(store, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				flushBatch(store, batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			// Drain whatever is still queued, then flush.
			for {
				select {
				case event := <-handlers.ClickQueue:
					batch = append(batch, event)
					if len(batch) >= BatchSize {
						flushBatch(store, batch)
						batch = batch[:0]
					}
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				flushBatch(store, batch)
			}
			return
		}
	}
}

// flushBatch persists a batch of clicks. Failures are logged and
// swallowed: click recording must never surface to redirect callers.
// A fresh context keeps the shutdown flush working after the worker
// context is canceled.
func flushBatch(store db.Store, events []models.ClickEvent) {
	if len(events) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := store.BatchRecordClicks(ctx, events); err != nil {
		log.Printf("Error recording %d click events: %v", len(events), err)
	}
}
