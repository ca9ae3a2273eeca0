package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/internal/cart"
	"github.com/medimartid/medimart-gateway/internal/shipping"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

// Submitter is the slice of the marketplace API that places orders.
type Submitter interface {
	SubmitOrders(ctx context.Context, token string, groups []marketapi.OrderSubmission) error
}

// OptionsResult pairs carrier quotes with the address version they were
// issued under. The client echoes the version back when picking one.
type OptionsResult struct {
	AddressVersion uint64                     `json:"address_version"`
	Options        []marketapi.ShippingOption `json:"options"`
}

// SubmitResult reports what a successful submit placed.
type SubmitResult struct {
	Orders int `json:"orders"`
}

// Service is the checkout surface the HTTP controllers call.
type Service interface {
	Enter(ctx context.Context, userID uuid.UUID) (View, error)
	View(ctx context.Context, userID uuid.UUID) (View, error)
	SetNote(ctx context.Context, userID, pharmacyID uuid.UUID, note string) (View, error)
	SetAddress(ctx context.Context, userID, addressID uuid.UUID, destination string) (View, error)
	Options(ctx context.Context, token string, userID, pharmacyID uuid.UUID) (OptionsResult, error)
	PickShipCost(ctx context.Context, userID, pharmacyID uuid.UUID, version uint64, option marketapi.ShippingOption) (View, error)
	Submit(ctx context.Context, token string, userID uuid.UUID) (SubmitResult, error)
}

type service struct {
	carts      cart.Service
	resolver   *shipping.Resolver
	submitter  Submitter
	aggregator *Aggregator
	logg       *logger.Logger
}

// NewService wires the checkout service over the cart, the quote resolver
// and the marketplace order endpoint.
func NewService(carts cart.Service, resolver *shipping.Resolver, submitter Submitter, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, errors.New("checkout: cart service is required")
	}
	if resolver == nil {
		return nil, errors.New("checkout: shipping resolver is required")
	}
	if submitter == nil {
		return nil, errors.New("checkout: submitter is required")
	}
	if logg == nil {
		return nil, errors.New("checkout: logger is required")
	}
	return &service{
		carts:      carts,
		resolver:   resolver,
		submitter:  submitter,
		aggregator: NewAggregator(),
		logg:       logg,
	}, nil
}

func (s *service) Enter(ctx context.Context, userID uuid.UUID) (View, error) {
	selection := s.carts.Selection(ctx, userID)
	view, err := s.aggregator.Enter(userID, selection)
	if err != nil {
		return View{}, err
	}
	fields := map[string]any{"groups": len(view.Groups)}
	s.logg.Info(s.logg.WithFields(s.logg.WithUserID(ctx, userID.String()), fields), "checkout.entered")
	return view, nil
}

func (s *service) View(ctx context.Context, userID uuid.UUID) (View, error) {
	return s.aggregator.View(userID)
}

func (s *service) SetNote(ctx context.Context, userID, pharmacyID uuid.UUID, note string) (View, error) {
	return s.aggregator.SetNote(userID, pharmacyID, note)
}

func (s *service) SetAddress(ctx context.Context, userID, addressID uuid.UUID, destination string) (View, error) {
	return s.aggregator.SetAddress(userID, addressID, destination)
}

func (s *service) Options(ctx context.Context, token string, userID, pharmacyID uuid.UUID) (OptionsResult, error) {
	items, addressID, destination, version, err := s.aggregator.QuoteContext(userID, pharmacyID)
	if err != nil {
		return OptionsResult{}, err
	}

	// The remote quote runs outside the session lock. If the address moved
	// on while it was in flight, the result is stale and never surfaced.
	options, err := s.resolver.Options(ctx, token, pharmacyID, addressID, destination, items)
	if err != nil {
		return OptionsResult{}, err
	}
	current, err := s.aggregator.View(userID)
	if err != nil {
		return OptionsResult{}, err
	}
	if current.AddressVersion != version {
		return OptionsResult{}, pkgerrors.New(pkgerrors.CodeConflict, "address changed while quoting, refresh the options")
	}
	return OptionsResult{AddressVersion: version, Options: options}, nil
}

func (s *service) PickShipCost(ctx context.Context, userID, pharmacyID uuid.UUID, version uint64, option marketapi.ShippingOption) (View, error) {
	return s.aggregator.ApplyShipCost(userID, pharmacyID, version, option)
}

func (s *service) Submit(ctx context.Context, token string, userID uuid.UUID) (SubmitResult, error) {
	submissions, err := s.aggregator.BuildSubmissions(userID)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := s.submitter.SubmitOrders(ctx, token, submissions); err != nil {
		return SubmitResult{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "submit orders")
	}
	s.aggregator.Clear(userID)

	// The marketplace consumed the purchased lines; reload so the local
	// cart stops showing them. A failed reload self-heals on the next get.
	if _, err := s.carts.Refresh(ctx, token, userID); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "checkout.cart_reload_failed")
	}

	fields := map[string]any{"orders": len(submissions)}
	s.logg.Info(s.logg.WithFields(s.logg.WithUserID(ctx, userID.String()), fields), "checkout.submitted")
	return SubmitResult{Orders: len(submissions)}, nil
}
