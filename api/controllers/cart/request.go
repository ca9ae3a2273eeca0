package cart

import "github.com/google/uuid"

// QuantityRequest carries a quantity edit. Exactly one of quantity or delta
// is set: quantity is the absolute value from the input field, delta the
// plus/minus step from the stepper buttons.
type QuantityRequest struct {
	PharmacyID uuid.UUID `json:"pharmacy_id" validate:"required"`
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	Quantity   *int      `json:"quantity,omitempty"`
	Delta      *int      `json:"delta,omitempty"`
}

// ToggleProductRequest flips one line item's selection.
type ToggleProductRequest struct {
	PharmacyID uuid.UUID `json:"pharmacy_id" validate:"required"`
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
}

// TogglePharmacyRequest flips one pharmacy group's selection.
type TogglePharmacyRequest struct {
	PharmacyID uuid.UUID `json:"pharmacy_id" validate:"required"`
}
