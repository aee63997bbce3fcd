package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"magpulse/internal/cache"
	"magpulse/internal/models"
	"magpulse/internal/services"
)

// Recompute cadences. The 24h window moves fastest; the longer windows
// change slowly enough that hourly is plenty.
const (
	shortWindowInterval = 15 * time.Minute
	longWindowInterval  = time.Hour
)

// WorkerService runs the periodic trending recomputes in the background.
type WorkerService struct {
	recommender   *services.RecommenderService
	trendingCache *cache.TrendingCache

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewWorkerService creates a new worker service
func NewWorkerService(recommender *services.RecommenderService, trendingCache *cache.TrendingCache) *WorkerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerService{
		recommender:   recommender,
		trendingCache: trendingCache,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start starts the background workers
func (ws *WorkerService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil // Already running
	}

	log.Println("Starting background workers...")

	ws.wg.Add(1)
	go func() {
		defer ws.wg.Done()
		ws.runRecomputeLoop()
	}()

	ws.running = true
	log.Println("Background workers started successfully")

	return nil
}

// Stop stops all background workers and waits for them to finish
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.running {
		return // Not running
	}

	log.Println("Stopping background workers...")

	ws.cancel()
	ws.wg.Wait()

	ws.running = false
	log.Println("Background workers stopped")
}

// IsRunning returns whether the worker service is currently running
func (ws *WorkerService) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

// runRecomputeLoop drives the periodic trending recomputes. An initial 24h
// pass runs at startup so a fresh deployment serves scores immediately.
func (ws *WorkerService) runRecomputeLoop() {
	log.Println("Starting trending recompute worker...")

	ws.recompute(models.Timeframe24h)

	shortTicker := time.NewTicker(shortWindowInterval)
	longTicker := time.NewTicker(longWindowInterval)
	defer shortTicker.Stop()
	defer longTicker.Stop()

	for {
		select {
		case <-ws.ctx.Done():
			log.Println("Trending recompute worker stopped")
			return

		case <-shortTicker.C:
			ws.recompute(models.Timeframe24h)

		case <-longTicker.C:
			ws.recompute(models.Timeframe7d)
			ws.recompute(models.Timeframe30d)
		}
	}
}

// recompute runs one batch and invalidates the cached lists for the
// timeframe.
func (ws *WorkerService) recompute(timeframe string) {
	processed, err := ws.recommender.RecomputeTrending(ws.ctx, timeframe)
	if err != nil {
		log.Printf("Trending recompute (%s) failed: %v", timeframe, err)
		return
	}

	ws.trendingCache.InvalidateTimeframe(ws.ctx, timeframe)
	log.Printf("Trending recompute (%s) completed: %d posts processed", timeframe, processed)
}
