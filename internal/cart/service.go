package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/pkg/config"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
)

// Service is the cart surface the HTTP controllers call. Every mutation
// returns the post-mutation snapshot so the client can render without a
// follow-up read.
type Service interface {
	Get(ctx context.Context, token string, userID uuid.UUID) (Snapshot, error)
	Refresh(ctx context.Context, token string, userID uuid.UUID) (Snapshot, error)
	SetQuantity(ctx context.Context, token string, userID, pharmacyID, productID uuid.UUID, quantity int) (Snapshot, error)
	AdjustQuantity(ctx context.Context, token string, userID, pharmacyID, productID uuid.UUID, delta int) (Snapshot, error)
	RemoveItem(ctx context.Context, token string, userID, pharmacyID, productID uuid.UUID) (Snapshot, error)
	ToggleProduct(ctx context.Context, userID, pharmacyID, productID uuid.UUID) (Snapshot, error)
	TogglePharmacy(ctx context.Context, userID, pharmacyID uuid.UUID) (Snapshot, error)
	ToggleSelectAll(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	Selection(ctx context.Context, userID uuid.UUID) []PharmacyView
	Drop(ctx context.Context, userID uuid.UUID)
}

type service struct {
	registry *Registry
	logg     *logger.Logger
}

// NewService wires the cart service over a per-user engine registry.
func NewService(remote RemoteCart, notifier Notifier, logg *logger.Logger, cfg config.CartConfig) (Service, *Registry, error) {
	if remote == nil {
		return nil, nil, errors.New("cart: remote client is required")
	}
	if logg == nil {
		return nil, nil, errors.New("cart: logger is required")
	}
	registry := NewRegistry(remote, notifier, logg, cfg.DebounceWindow, cfg.EngineTTL)
	return &service{registry: registry, logg: logg}, registry, nil
}

func (s *service) Get(ctx context.Context, token string, userID uuid.UUID) (Snapshot, error) {
	engine := s.registry.Engine(userID)
	snap := engine.Snapshot()
	if snap.Version > 0 {
		return snap, nil
	}
	// First touch for this user: populate from the marketplace.
	return s.refresh(ctx, engine, token, userID)
}

func (s *service) Refresh(ctx context.Context, token string, userID uuid.UUID) (Snapshot, error) {
	return s.refresh(ctx, s.registry.Engine(userID), token, userID)
}

func (s *service) refresh(ctx context.Context, engine *Engine, token string, userID uuid.UUID) (Snapshot, error) {
	start := time.Now()
	if err := engine.Refresh(ctx, token); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "cart.refresh_failed", err)
		return Snapshot{}, err
	}
	snap := engine.Snapshot()
	fields := map[string]any{
		"pharmacies": len(snap.Pharmacies),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	s.logg.Debug(s.logg.WithFields(s.logg.WithUserID(ctx, userID.String()), fields), "cart.refreshed")
	return snap, nil
}

func (s *service) SetQuantity(ctx context.Context, token string, userID, pharmacyID, productID uuid.UUID, quantity int) (Snapshot, error) {
	engine := s.registry.Engine(userID)
	if !engine.HasItem(pharmacyID, productID) {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	engine.SetQuantity(token, pharmacyID, productID, quantity)
	return engine.Snapshot(), nil
}

func (s *service) AdjustQuantity(ctx context.Context, token string, userID, pharmacyID, productID uuid.UUID, delta int) (Snapshot, error) {
	engine := s.registry.Engine(userID)
	if !engine.HasItem(pharmacyID, productID) {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	engine.AdjustQuantity(token, pharmacyID, productID, delta)
	return engine.Snapshot(), nil
}

func (s *service) RemoveItem(ctx context.Context, token string, userID, pharmacyID, productID uuid.UUID) (Snapshot, error) {
	engine := s.registry.Engine(userID)
	if err := engine.RemoveItem(ctx, token, pharmacyID, productID); err != nil {
		return Snapshot{}, err
	}
	return engine.Snapshot(), nil
}

func (s *service) ToggleProduct(ctx context.Context, userID, pharmacyID, productID uuid.UUID) (Snapshot, error) {
	engine := s.registry.Engine(userID)
	if !engine.ToggleProduct(pharmacyID, productID) {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return engine.Snapshot(), nil
}

func (s *service) TogglePharmacy(ctx context.Context, userID, pharmacyID uuid.UUID) (Snapshot, error) {
	engine := s.registry.Engine(userID)
	if !engine.TogglePharmacy(pharmacyID) {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "pharmacy not in cart")
	}
	return engine.Snapshot(), nil
}

func (s *service) ToggleSelectAll(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	engine := s.registry.Engine(userID)
	engine.ToggleSelectAll()
	return engine.Snapshot(), nil
}

func (s *service) Selection(ctx context.Context, userID uuid.UUID) []PharmacyView {
	return s.registry.Engine(userID).CheckedSelection()
}

func (s *service) Drop(ctx context.Context, userID uuid.UUID) {
	s.registry.Drop(userID)
}
