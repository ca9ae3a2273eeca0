package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimartid/medimart-gateway/internal/cart"
	"github.com/medimartid/medimart-gateway/pkg/config"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
	"github.com/medimartid/medimart-gateway/pkg/types"
)

// Quoter is the slice of the marketplace API the resolver consumes.
type Quoter interface {
	QuoteShipping(ctx context.Context, token string, req marketapi.CostRequest) ([]marketapi.ShippingOption, error)
}

// Resolver fetches carrier quotes for one pharmacy group of a checkout. The
// parcel weight is derived from the group's items at quote time, so quantity
// and price shown to the buyer always match the weight that was quoted.
type Resolver struct {
	quoter Quoter
	origin string
}

// NewResolver wires a resolver over the marketplace quote endpoint.
func NewResolver(quoter Quoter, cfg config.ShippingConfig) (*Resolver, error) {
	if quoter == nil {
		return nil, errors.New("shipping: quoter is required")
	}
	return &Resolver{quoter: quoter, origin: cfg.Origin}, nil
}

// GroupWeight sums quantity times unit weight over the group's items and
// converts to the kilogram figure carriers quote against.
func GroupWeight(items []cart.ItemView) decimal.Decimal {
	grams := decimal.Zero
	for _, item := range items {
		grams = grams.Add(item.WeightGrams.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return types.GramsToKilograms(grams)
}

// Options returns the carrier quotes for one pharmacy group shipped to the
// given destination. A destination no carrier serves is a not-found error,
// not an empty list, so the storefront can tell "pick another address" apart
// from "still loading".
func (r *Resolver) Options(ctx context.Context, token string, pharmacyID, addressID uuid.UUID, destination string, items []cart.ItemView) ([]marketapi.ShippingOption, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot quote shipping for an empty group")
	}

	req := marketapi.CostRequest{
		PharmacyID:  pharmacyID,
		AddressID:   addressID,
		Origin:      r.origin,
		Destination: destination,
		Weight:      GroupWeight(items),
	}
	options, err := r.quoter.QuoteShipping(ctx, token, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "quote shipping")
	}
	if len(options) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no shipping option available for this destination")
	}
	return options, nil
}
