package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/pkg/logger"
)

// maxPerUser caps how many undelivered notices one user can accumulate.
// Oldest notices are dropped first; these are transient UI toasts, not an
// audit trail.
const maxPerUser = 20

// Notice is one user-facing message, typically surfaced as a toast.
type Notice struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Memory buffers notices per user until the client polls them. Notify never
// blocks, so background writers can report failures without caring whether
// anyone is listening.
type Memory struct {
	logg *logger.Logger

	mu      sync.Mutex
	pending map[uuid.UUID][]Notice
}

// NewMemory returns an empty notifier.
func NewMemory(logg *logger.Logger) *Memory {
	return &Memory{logg: logg, pending: make(map[uuid.UUID][]Notice)}
}

// Notify queues a message for the user.
func (m *Memory) Notify(ctx context.Context, userID uuid.UUID, message string) {
	m.mu.Lock()
	notices := append(m.pending[userID], Notice{Message: message, CreatedAt: time.Now()})
	if len(notices) > maxPerUser {
		notices = notices[len(notices)-maxPerUser:]
	}
	m.pending[userID] = notices
	m.mu.Unlock()

	if m.logg != nil {
		m.logg.Warn(m.logg.WithFields(ctx, map[string]any{
			"user_id": userID.String(),
			"notice":  message,
		}), "notify.queued")
	}
}

// Drain returns and clears the user's pending notices.
func (m *Memory) Drain(userID uuid.UUID) []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()

	notices := m.pending[userID]
	delete(m.pending, userID)
	return notices
}
