package cart

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/api/middleware"
	"github.com/medimartid/medimart-gateway/api/responses"
	"github.com/medimartid/medimart-gateway/api/validators"
	cartsvc "github.com/medimartid/medimart-gateway/internal/cart"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
)

// Fetch returns the cart snapshot, loading it from the marketplace on the
// user's first touch.
func Fetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, token, err := callerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Get(r.Context(), token, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// Refresh discards local state and reloads the cart from the marketplace.
func Refresh(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, token, err := callerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Refresh(r.Context(), token, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// UpdateQuantity applies an absolute or relative quantity edit.
func UpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, token, err := callerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload QuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if (payload.Quantity == nil) == (payload.Delta == nil) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "exactly one of quantity or delta is required"))
			return
		}

		var snap cartsvc.Snapshot
		if payload.Quantity != nil {
			snap, err = svc.SetQuantity(r.Context(), token, userID, payload.PharmacyID, payload.ProductID, *payload.Quantity)
		} else {
			snap, err = svc.AdjustQuantity(r.Context(), token, userID, payload.PharmacyID, payload.ProductID, *payload.Delta)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// RemoveItem deletes a line item, upstream first.
func RemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, token, err := callerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pharmacyID, err := validators.ParseUUIDParam(r, "pharmacyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.RemoveItem(r.Context(), token, userID, pharmacyID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// ToggleProduct flips one item's checked state.
func ToggleProduct(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := callerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ToggleProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.ToggleProduct(r.Context(), userID, payload.PharmacyID, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// TogglePharmacy flips one pharmacy group's checked state.
func TogglePharmacy(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := callerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload TogglePharmacyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.TogglePharmacy(r.Context(), userID, payload.PharmacyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// ToggleSelectAll flips the cart-wide selection.
func ToggleSelectAll(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := callerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.ToggleSelectAll(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

func callerFromContext(r *http.Request) (uuid.UUID, string, error) {
	raw := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "token context missing")
	}
	return userID, token, nil
}
