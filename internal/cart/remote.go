package cart

import (
	"context"

	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

// marketRemote binds the marketplace client to a fixed cart page size so the
// engine fetches the whole cart without carrying paging knowledge itself.
type marketRemote struct {
	*marketapi.Client
	pageLimit int
}

// NewMarketRemote adapts the marketplace client into a RemoteCart.
func NewMarketRemote(client *marketapi.Client, pageLimit int) RemoteCart {
	return &marketRemote{Client: client, pageLimit: pageLimit}
}

func (m *marketRemote) FetchFullCart(ctx context.Context, token string) ([]marketapi.PharmacyCart, error) {
	return m.Client.FetchFullCart(ctx, token, m.pageLimit)
}
