package services

import (
	"context"
	"log"
	"sync"
	"time"

	"weaver/career-coach/internal/models"
	"weaver/career-coach/internal/repositories"
)

const expiredSessionBatch = 50

// Janitor reaps sessions idle past their TTL, removing their stored uploads
// along with the database records. Session state lives only for the duration
// of a visit; this is what "the session ends" means on a server.
type Janitor interface {
	Start(ctx context.Context)
	Stop()
}

type janitor struct {
	sessionRepo   repositories.SessionRepository
	docRepo       repositories.DocumentRepository
	storage       StorageService
	ttl           time.Duration
	sweepInterval time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

func NewJanitor(
	sessionRepo repositories.SessionRepository,
	docRepo repositories.DocumentRepository,
	storage StorageService,
	ttl time.Duration,
	sweepInterval time.Duration,
) Janitor {
	return &janitor{
		sessionRepo:   sessionRepo,
		docRepo:       docRepo,
		storage:       storage,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Janitor.
func (j *janitor) Start(ctx context.Context) {
	log.Printf("🚀 Starting session janitor (ttl=%s, sweep=%s)\n", j.ttl, j.sweepInterval)

	j.wg.Add(1)
	go j.sweepLoop(ctx)
}

// Stop implements Janitor.
func (j *janitor) Stop() {
	log.Println("🛑 Stopping session janitor...")
	close(j.stopChan)
	j.wg.Wait()
	log.Println("✅ Session janitor stopped")
}

func (j *janitor) sweepLoop(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *janitor) sweep() {
	cutoff := time.Now().Add(-j.ttl)

	expired, err := j.sessionRepo.FindIdleSince(cutoff, expiredSessionBatch)
	if err != nil {
		log.Printf("⚠️  Failed to fetch expired sessions: %v\n", err)
		return
	}

	if len(expired) == 0 {
		return
	}
	log.Printf("🔄 Expiring %d idle sessions\n", len(expired))

	for _, session := range expired {
		j.expire(&session)
	}
}

func (j *janitor) expire(session *models.Session) {
	docs, err := j.docRepo.FindBySessionID(session.ID)
	if err != nil {
		log.Printf("⚠️  Failed to list documents for session %s: %v\n", session.ID, err)
	}

	for _, doc := range docs {
		if err := j.storage.DeleteFile(doc.Filename); err != nil {
			log.Printf("⚠️  Failed to delete file %s: %v\n", doc.Filename, err)
		}
	}

	if err := j.sessionRepo.Delete(session.ID); err != nil {
		log.Printf("❌ Failed to delete session %s: %v\n", session.ID, err)
		return
	}
	log.Printf("✅ Session %s expired\n", session.ID)
}
