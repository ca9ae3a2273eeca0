package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/api/middleware"
	"github.com/medimartid/medimart-gateway/api/responses"
	"github.com/medimartid/medimart-gateway/internal/notify"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
)

// Notifications drains the caller's pending notices, e.g. background sync
// failures queued while no request was in flight.
func Notifications(notifier *notify.Memory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		notices := notifier.Drain(userID)
		if notices == nil {
			notices = []notify.Notice{}
		}
		responses.WriteSuccess(w, notices)
	}
}
