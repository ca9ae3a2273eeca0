package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/pkg/logger"
)

const (
	// DefaultDebounceWindow is the quiet period before a quantity edit is
	// written upstream.
	DefaultDebounceWindow = 400 * time.Millisecond

	remoteWriteTimeout = 10 * time.Second
)

// RemoteWriter mirrors local quantity edits to the marketplace cart.
type RemoteWriter interface {
	UpdateQuantity(ctx context.Context, token string, pharmacyProductID uuid.UUID, quantity int) error
}

// Notifier surfaces non-blocking user-facing notices, e.g. a failed remote
// write that the optimistic local state deliberately does not roll back.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message string)
}

type syncKey struct {
	pharmacyID uuid.UUID
	productID  uuid.UUID
}

type pendingWrite struct {
	timer             *time.Timer
	pharmacyProductID uuid.UUID
	quantity          int
	token             string
}

// Synchronizer debounces quantity edits per line item. A newer edit to the
// same key cancels the pending write and restarts the window, so a rapid
// burst collapses to a single upstream PUT carrying the last value.
type Synchronizer struct {
	writer   RemoteWriter
	notifier Notifier
	logg     *logger.Logger
	userID   uuid.UUID
	window   time.Duration

	mu      sync.Mutex
	pending map[syncKey]*pendingWrite
	closed  bool
}

// NewSynchronizer builds a synchronizer for one user's cart engine.
func NewSynchronizer(userID uuid.UUID, writer RemoteWriter, notifier Notifier, logg *logger.Logger, window time.Duration) *Synchronizer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Synchronizer{
		writer:   writer,
		notifier: notifier,
		logg:     logg,
		userID:   userID,
		window:   window,
		pending:  make(map[syncKey]*pendingWrite),
	}
}

// Schedule queues a remote write for the line item after the quiet period.
// Any write already pending for the same key is cancelled, not merely
// superseded: its timer is stopped before the new one starts.
func (s *Synchronizer) Schedule(token string, pharmacyID, productID, pharmacyProductID uuid.UUID, quantity int) {
	key := syncKey{pharmacyID: pharmacyID, productID: productID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if prior, ok := s.pending[key]; ok {
		prior.timer.Stop()
	}

	write := &pendingWrite{
		pharmacyProductID: pharmacyProductID,
		quantity:          quantity,
		token:             token,
	}
	write.timer = time.AfterFunc(s.window, func() {
		s.fire(key, write)
	})
	s.pending[key] = write
}

// Pending reports how many writes are waiting on their quiet period.
func (s *Synchronizer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels every pending write. Used on engine teardown so no timer
// outlives the cart it belongs to.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, write := range s.pending {
		write.timer.Stop()
		delete(s.pending, key)
	}
}

func (s *Synchronizer) fire(key syncKey, write *pendingWrite) {
	s.mu.Lock()
	current, ok := s.pending[key]
	if !ok || current != write || s.closed {
		// A newer edit replaced this write while the timer was firing.
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
	defer cancel()

	if err := s.writer.UpdateQuantity(ctx, write.token, write.pharmacyProductID, write.quantity); err != nil {
		// No rollback: the local quantity stays as the user set it.
		if s.logg != nil {
			fields := map[string]any{
				"pharmacy_product_id": write.pharmacyProductID.String(),
				"quantity":            write.quantity,
			}
			s.logg.Error(s.logg.WithFields(ctx, fields), "cart.quantity_sync_failed", err)
		}
		if s.notifier != nil {
			s.notifier.Notify(ctx, s.userID, "could not save a quantity change, please retry")
		}
	}
}
