package marketapi

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimartid/medimart-gateway/pkg/enums"
	"github.com/medimartid/medimart-gateway/pkg/pagination"
)

// CartPage is one page of the buyer's cart as the marketplace returns it.
type CartPage struct {
	Pharmacies []PharmacyCart   `json:"pharmacies"`
	Paging     pagination.Paging `json:"paging"`
}

// PharmacyCart bundles one pharmacy's slice of the cart.
type PharmacyCart struct {
	PharmacyInfo          PharmacyInfo    `json:"pharmacy_info"`
	ProductsInfo          []ProductInfo   `json:"products_info"`
	TotalPricePerPharmacy decimal.Decimal `json:"total_price_per_pharmacy"`
}

// PharmacyInfo identifies the vendor behind a cart group.
type PharmacyInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	PartnerID uuid.UUID `json:"partner_id"`
}

// ProductInfo is the remote snapshot of one product offered by one pharmacy.
type ProductInfo struct {
	PharmacyProductID uuid.UUID       `json:"pharmacy_product_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Stock             int             `json:"stock"`
	WeightGrams       decimal.Decimal `json:"weight"`
}

// CostRequest asks the marketplace for carrier quotes for one pharmacy.
type CostRequest struct {
	PharmacyID  uuid.UUID       `json:"pharmacy_id"`
	AddressID   uuid.UUID       `json:"address_id"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Weight      decimal.Decimal `json:"weight"`
}

// ShippingOption is a single carrier quote.
type ShippingOption struct {
	Code       string          `json:"code"`
	Service    string          `json:"service"`
	Estimation string          `json:"estimation"`
	ShipCost   decimal.Decimal `json:"ship_cost"`
}

// OrderProduct is one line of a submitted order.
type OrderProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderSubmission is the per-pharmacy checkout payload.
type OrderSubmission struct {
	AddressID     uuid.UUID       `json:"address_id"`
	PharmacyID    uuid.UUID       `json:"pharmacy_id"`
	Description   string          `json:"description"`
	OrderProducts []OrderProduct  `json:"order_products"`
	ShipCost      decimal.Decimal `json:"ship_cost"`
}

// OrderSummary carries the fields bulk actions validate against.
type OrderSummary struct {
	ID         uuid.UUID         `json:"id"`
	PharmacyID uuid.UUID         `json:"pharmacy_id"`
	Status     enums.OrderStatus `json:"status"`
}
