package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

// RemoteCart is the slice of the marketplace API the engine consumes.
type RemoteCart interface {
	RemoteWriter
	FetchFullCart(ctx context.Context, token string) ([]marketapi.PharmacyCart, error)
	RemoveCartItem(ctx context.Context, token string, pharmacyProductID uuid.UUID) error
}

// ItemView is the render-ready copy of one line item.
type ItemView struct {
	PharmacyProductID uuid.UUID       `json:"pharmacy_product_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Stock             int             `json:"stock"`
	WeightGrams       decimal.Decimal `json:"weight_grams"`
	Checked           bool            `json:"checked"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// PharmacyView groups the items one pharmacy contributes, with the running
// total of its checked items.
type PharmacyView struct {
	PharmacyID   uuid.UUID       `json:"pharmacy_id"`
	Name         string          `json:"name"`
	City         string          `json:"city"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	Checked      bool            `json:"checked"`
	Items        []ItemView      `json:"items"`
	CheckedTotal decimal.Decimal `json:"checked_total"`
}

// Snapshot is an immutable copy of the cart for rendering. Mutating it never
// touches the engine's state.
type Snapshot struct {
	Version      uint64          `json:"version"`
	SelectAll    bool            `json:"select_all"`
	CheckedCount int             `json:"checked_count"`
	CheckedTotal decimal.Decimal `json:"checked_total"`
	Pharmacies   []PharmacyView  `json:"pharmacies"`
}

// Engine owns one user's cart. Every public method takes the engine mutex, so
// concurrent requests for the same user serialize the way a single event loop
// would; distinct users never contend.
type Engine struct {
	userID uuid.UUID
	remote RemoteCart
	syncer *Synchronizer
	logg   *logger.Logger

	mu       sync.Mutex
	store    *Store
	lastUsed time.Time
}

// NewEngine builds an empty engine. The first Refresh populates it.
func NewEngine(userID uuid.UUID, remote RemoteCart, notifier Notifier, logg *logger.Logger, debounce time.Duration) *Engine {
	return &Engine{
		userID:   userID,
		remote:   remote,
		syncer:   NewSynchronizer(userID, remote, notifier, logg, debounce),
		logg:     logg,
		store:    NewStore(),
		lastUsed: time.Now(),
	}
}

// Refresh replaces the local cart with the marketplace's current contents.
// All checked flags reset, matching a fresh page load.
func (e *Engine) Refresh(ctx context.Context, token string) error {
	payload, err := e.remote.FetchFullCart(ctx, token)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "refresh cart")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.store.Load(payload)
	return nil
}

// Snapshot renders the current cart state into detached copies.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.snapshotLocked()
}

// SetQuantity applies an absolute quantity, clamped to [1, stock], and
// schedules the debounced remote write when the value actually changed.
func (e *Engine) SetQuantity(token string, pharmacyID, productID uuid.UUID, quantity int) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	applied, changed := e.store.SetQuantity(pharmacyID, productID, quantity)
	if changed {
		e.scheduleSyncLocked(token, pharmacyID, productID)
	}
	return applied, changed
}

// AdjustQuantity applies a relative step. Steps that would leave the valid
// range are dropped here and never reach the synchronizer.
func (e *Engine) AdjustQuantity(token string, pharmacyID, productID uuid.UUID, delta int) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	applied, changed := e.store.AdjustQuantity(pharmacyID, productID, delta)
	if changed {
		e.scheduleSyncLocked(token, pharmacyID, productID)
	}
	return applied, changed
}

// RemoveItem deletes the line item upstream first, then locally. Removal is
// immediate, never debounced, and a pending quantity write for the removed
// item is left to resolve upstream as a harmless late PUT.
func (e *Engine) RemoveItem(ctx context.Context, token string, pharmacyID, productID uuid.UUID) error {
	e.mu.Lock()
	item, ok := e.store.Item(pharmacyID, productID)
	if !ok {
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	pharmacyProductID := item.PharmacyProductID
	e.mu.Unlock()

	if err := e.remote.RemoveCartItem(ctx, token, pharmacyProductID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "remove cart item")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.store.RemoveItem(pharmacyID, productID)
	return nil
}

// HasItem reports whether the line item exists.
func (e *Engine) HasItem(pharmacyID, productID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.store.Item(pharmacyID, productID)
	return ok
}

// ToggleProduct flips one item's selection.
func (e *Engine) ToggleProduct(pharmacyID, productID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.store.ToggleProduct(pharmacyID, productID)
}

// TogglePharmacy flips a pharmacy's selection and all of its items.
func (e *Engine) TogglePharmacy(pharmacyID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.store.TogglePharmacy(pharmacyID)
}

// ToggleSelectAll flips the cart-wide selection.
func (e *Engine) ToggleSelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.store.ToggleSelectAll()
}

// CheckedSelection returns detached copies of the checked items only,
// grouped by pharmacy. Pharmacies with no checked items are omitted. This is
// the hand-off into checkout: later cart edits cannot reach these copies.
func (e *Engine) CheckedSelection() []PharmacyView {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	var out []PharmacyView
	for _, group := range e.store.Pharmacies() {
		view := PharmacyView{
			PharmacyID:   group.ID,
			Name:         group.Name,
			City:         group.City,
			PartnerID:    group.PartnerID,
			Checked:      group.Checked,
			CheckedTotal: decimal.Zero,
		}
		for _, item := range group.Items() {
			if !item.Checked {
				continue
			}
			itemView := newItemView(item)
			view.Items = append(view.Items, itemView)
			view.CheckedTotal = view.CheckedTotal.Add(itemView.Subtotal)
		}
		if len(view.Items) > 0 {
			out = append(out, view)
		}
	}
	return out
}

// LastUsed reports when the engine last served a call. The registry sweeps
// engines idle past their TTL.
func (e *Engine) LastUsed() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}

// Close cancels pending remote writes. Called on registry eviction.
func (e *Engine) Close() {
	e.syncer.Close()
}

func (e *Engine) scheduleSyncLocked(token string, pharmacyID, productID uuid.UUID) {
	item, ok := e.store.Item(pharmacyID, productID)
	if !ok {
		return
	}
	e.syncer.Schedule(token, pharmacyID, productID, item.PharmacyProductID, item.Quantity)
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:      e.store.Version(),
		SelectAll:    e.store.SelectAll(),
		CheckedCount: e.store.CheckedCount(),
		CheckedTotal: decimal.Zero,
		Pharmacies:   make([]PharmacyView, 0, len(e.store.Pharmacies())),
	}
	for _, group := range e.store.Pharmacies() {
		view := PharmacyView{
			PharmacyID:   group.ID,
			Name:         group.Name,
			City:         group.City,
			PartnerID:    group.PartnerID,
			Checked:      group.Checked,
			Items:        make([]ItemView, 0, len(group.Items())),
			CheckedTotal: decimal.Zero,
		}
		for _, item := range group.Items() {
			itemView := newItemView(item)
			view.Items = append(view.Items, itemView)
			if item.Checked {
				view.CheckedTotal = view.CheckedTotal.Add(itemView.Subtotal)
			}
		}
		snap.CheckedTotal = snap.CheckedTotal.Add(view.CheckedTotal)
		snap.Pharmacies = append(snap.Pharmacies, view)
	}
	return snap
}

func newItemView(item *LineItem) ItemView {
	return ItemView{
		PharmacyProductID: item.PharmacyProductID,
		ProductID:         item.ProductID,
		Name:              item.Name,
		Image:             item.Image,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
		Stock:             item.Stock,
		WeightGrams:       item.WeightGrams,
		Checked:           item.Checked,
		Subtotal:          item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
	}
}

func (e *Engine) touch() {
	e.lastUsed = time.Now()
}
