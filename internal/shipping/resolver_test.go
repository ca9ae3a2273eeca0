package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimartid/medimart-gateway/internal/cart"
	"github.com/medimartid/medimart-gateway/pkg/config"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

type fakeQuoter struct {
	req     marketapi.CostRequest
	options []marketapi.ShippingOption
	err     error
}

func (f *fakeQuoter) QuoteShipping(ctx context.Context, token string, req marketapi.CostRequest) ([]marketapi.ShippingOption, error) {
	f.req = req
	return f.options, f.err
}

func items(quantities []int, weightGrams []int64) []cart.ItemView {
	out := make([]cart.ItemView, 0, len(quantities))
	for i := range quantities {
		out = append(out, cart.ItemView{
			ProductID:   uuid.New(),
			Quantity:    quantities[i],
			WeightGrams: decimal.NewFromInt(weightGrams[i]),
		})
	}
	return out
}

func TestGroupWeightRoundsUp(t *testing.T) {
	t.Parallel()

	// 3 x 150g + 2 x 47g = 544g = 0.544kg, rounded up to 0.55kg.
	weight := GroupWeight(items([]int{3, 2}, []int64{150, 47}))
	assert.True(t, weight.Equal(decimal.RequireFromString("0.55")), "expected 0.55 kg, got %s", weight)
}

func TestOptionsBuildsCostRequest(t *testing.T) {
	t.Parallel()

	quoter := &fakeQuoter{options: []marketapi.ShippingOption{{Code: "jne", Service: "REG", ShipCost: decimal.NewFromInt(18000)}}}
	resolver, err := NewResolver(quoter, config.ShippingConfig{Origin: "Jakarta Selatan"})
	require.NoError(t, err)

	pharmacyID := uuid.New()
	addressID := uuid.New()
	options, err := resolver.Options(context.Background(), "token", pharmacyID, addressID, "Bandung", items([]int{2}, []int64{500}))
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "jne", options[0].Code)

	assert.Equal(t, pharmacyID, quoter.req.PharmacyID)
	assert.Equal(t, addressID, quoter.req.AddressID)
	assert.Equal(t, "Jakarta Selatan", quoter.req.Origin)
	assert.Equal(t, "Bandung", quoter.req.Destination)
	assert.True(t, quoter.req.Weight.Equal(decimal.NewFromInt(1)), "expected 1 kg, got %s", quoter.req.Weight)
}

func TestOptionsEmptyGroupRejected(t *testing.T) {
	t.Parallel()

	resolver, err := NewResolver(&fakeQuoter{}, config.ShippingConfig{})
	require.NoError(t, err)

	_, err = resolver.Options(context.Background(), "token", uuid.New(), uuid.New(), "Bandung", nil)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestOptionsNoCarrierServesDestination(t *testing.T) {
	t.Parallel()

	resolver, err := NewResolver(&fakeQuoter{}, config.ShippingConfig{})
	require.NoError(t, err)

	_, err = resolver.Options(context.Background(), "token", uuid.New(), uuid.New(), "Sabang", items([]int{1}, []int64{100}))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestOptionsUpstreamFailure(t *testing.T) {
	t.Parallel()

	resolver, err := NewResolver(&fakeQuoter{err: errors.New("boom")}, config.ShippingConfig{})
	require.NoError(t, err)

	_, err = resolver.Options(context.Background(), "token", uuid.New(), uuid.New(), "Bandung", items([]int{1}, []int64{100}))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUpstream, appErr.Code())
}

func TestNewResolverRequiresQuoter(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(nil, config.ShippingConfig{})
	require.Error(t, err)
}
