package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoteRequest attaches a buyer note to one pharmacy's order.
type NoteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// AddressRequest picks the delivery address for the whole checkout.
type AddressRequest struct {
	AddressID   uuid.UUID `json:"address_id" validate:"required"`
	Destination string    `json:"destination" validate:"required"`
}

// ShipCostRequest records the carrier option the buyer picked. The address
// version echoes the value returned with the options it was chosen from.
type ShipCostRequest struct {
	AddressVersion uint64          `json:"address_version"`
	Code           string          `json:"code" validate:"required"`
	Service        string          `json:"service" validate:"required"`
	Estimation     string          `json:"estimation"`
	ShipCost       decimal.Decimal `json:"ship_cost" validate:"required"`
}
