package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medimartid/medimart-gateway/api/middleware"
	"github.com/medimartid/medimart-gateway/api/responses"
	"github.com/medimartid/medimart-gateway/api/validators"
	orderssvc "github.com/medimartid/medimart-gateway/internal/orders"
	"github.com/medimartid/medimart-gateway/pkg/enums"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
)

// BulkRequest carries the checked subset of orders the action applies to.
type BulkRequest struct {
	Orders []orderssvc.Summary `json:"orders" validate:"required,min=1,dive"`
}

// Bulk applies a batch action to a homogeneous subset of orders.
func Bulk(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.TokenFromContext(r.Context())
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token context missing"))
			return
		}

		action, err := enums.ParseBulkOrderAction(chi.URLParam(r, "action"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown bulk action"))
			return
		}

		var payload BulkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Apply(r.Context(), token, action, payload.Orders)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
