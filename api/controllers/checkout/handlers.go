package checkout

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/api/middleware"
	"github.com/medimartid/medimart-gateway/api/responses"
	"github.com/medimartid/medimart-gateway/api/validators"
	checkoutsvc "github.com/medimartid/medimart-gateway/internal/checkout"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

// Enter snapshots the checked cart selection into a checkout session.
func Enter(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Enter(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// Fetch returns the current checkout summary.
func Fetch(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.View(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SetNote attaches a note to one pharmacy's order.
func SetNote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pharmacyID, err := validators.ParseUUIDParam(r, "pharmacyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload NoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetNote(r.Context(), userID, pharmacyID, payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SetAddress picks the delivery address and invalidates earlier quotes.
func SetAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetAddress(r.Context(), userID, payload.AddressID, payload.Destination)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Options fetches carrier quotes for one pharmacy group.
func Options(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pharmacyID, err := validators.ParseUUIDParam(r, "pharmacyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.TokenFromContext(r.Context())
		result, err := svc.Options(r.Context(), token, userID, pharmacyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SetShipCost applies the carrier option the buyer picked.
func SetShipCost(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pharmacyID, err := validators.ParseUUIDParam(r, "pharmacyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ShipCostRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		option := marketapi.ShippingOption{
			Code:       payload.Code,
			Service:    payload.Service,
			Estimation: payload.Estimation,
			ShipCost:   payload.ShipCost,
		}
		view, err := svc.PickShipCost(r.Context(), userID, pharmacyID, payload.AddressVersion, option)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Submit places one order per pharmacy group.
func Submit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.TokenFromContext(r.Context())
		result, err := svc.Submit(r.Context(), token, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}
