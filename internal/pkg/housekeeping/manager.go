package housekeeping

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/env"
)

// Manager schedules the credit-expiry sweep.
type Manager struct {
	cron    *cron.Cron
	service *Service
	mu      sync.Mutex
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global housekeeping manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			cron:    cron.New(),
			service: NewService(repository.GetGlobalRepositories(), NewHTTPFlipper()),
		}
	})
	return globalManager
}

// GetService returns the sweep service for ad-hoc admin-triggered runs.
func (m *Manager) GetService() *Service {
	return m.service
}

// Start registers the cron entry and starts the scheduler.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	schedule := env.GetEnv("HOUSEKEEPING_CRON", "0 3 * * *")
	_, err := m.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		summary, err := m.service.Run(ctx)
		if err != nil {
			log.Printf("[Housekeeping] sweep failed: %v", err)
			return
		}
		log.Printf("[Housekeeping] sweep done: processed=%d succeeded=%d failed=%d",
			summary.Processed, summary.Succeeded, summary.Failed)
	})
	if err != nil {
		log.Printf("[Housekeeping] invalid cron schedule %q: %v", schedule, err)
		return
	}

	m.cron.Start()
	m.running = true
	log.Printf("[Housekeeping] scheduled with %q", schedule)
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	<-m.cron.Stop().Done()
	m.running = false
}
