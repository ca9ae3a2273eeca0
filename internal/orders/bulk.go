package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/medimartid/medimart-gateway/pkg/enums"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
)

// StatusWriter is the slice of the marketplace API that transitions orders.
type StatusWriter interface {
	UpdateOrderStatus(ctx context.Context, token string, orderID uuid.UUID, status enums.OrderStatus) error
}

// Summary carries the fields bulk validation inspects.
type Summary struct {
	ID         uuid.UUID         `json:"id"`
	PharmacyID uuid.UUID         `json:"pharmacy_id"`
	Status     enums.OrderStatus `json:"status"`
}

// BulkResult reports which orders transitioned and which failed upstream.
type BulkResult struct {
	Action  enums.BulkOrderAction `json:"action"`
	Updated []uuid.UUID           `json:"updated"`
	Failed  []uuid.UUID           `json:"failed,omitempty"`
}

// Service runs batch actions over a checked subset of a pharmacist's
// orders. The whole batch is validated up front: bulk actions only make
// sense over a homogeneous subset, one pharmacy and one eligible status set.
type Service interface {
	Apply(ctx context.Context, token string, action enums.BulkOrderAction, orders []Summary) (BulkResult, error)
}

type service struct {
	writer StatusWriter
	logg   *logger.Logger
}

// NewService wires the bulk order service.
func NewService(writer StatusWriter, logg *logger.Logger) (Service, error) {
	if writer == nil {
		return nil, errors.New("orders: status writer is required")
	}
	if logg == nil {
		return nil, errors.New("orders: logger is required")
	}
	return &service{writer: writer, logg: logg}, nil
}

// ValidateHomogeneous checks that the subset is non-empty, belongs to a
// single pharmacy, and that every order is in a status the action accepts.
// All violations are reported together.
func ValidateHomogeneous(action enums.BulkOrderAction, orders []Summary) error {
	if !action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown bulk action %q", action))
	}
	if len(orders) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no orders selected")
	}

	var problems error
	pharmacyID := orders[0].PharmacyID
	allowed := action.AllowedStatuses()
	for _, order := range orders {
		if order.PharmacyID != pharmacyID {
			problems = multierr.Append(problems, fmt.Errorf("order %s belongs to a different pharmacy", order.ID))
			continue
		}
		if !statusAllowed(order.Status, allowed) {
			problems = multierr.Append(problems,
				fmt.Errorf("order %s in status %s cannot be %s", order.ID, order.Status, actionVerb(action)))
		}
	}
	if problems != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, problems, "bulk selection is not homogeneous")
	}
	return nil
}

func (s *service) Apply(ctx context.Context, token string, action enums.BulkOrderAction, orders []Summary) (BulkResult, error) {
	if err := ValidateHomogeneous(action, orders); err != nil {
		return BulkResult{}, err
	}

	target := targetStatus(action)
	result := BulkResult{Action: action}
	for _, order := range orders {
		if err := s.writer.UpdateOrderStatus(ctx, token, order.ID, target); err != nil {
			result.Failed = append(result.Failed, order.ID)
			fields := map[string]any{"order_id": order.ID.String(), "action": action.String()}
			s.logg.Error(s.logg.WithFields(ctx, fields), "orders.bulk_update_failed", err)
			continue
		}
		result.Updated = append(result.Updated, order.ID)
	}
	if len(result.Updated) == 0 {
		return result, pkgerrors.New(pkgerrors.CodeUpstream, "no order could be updated")
	}
	return result, nil
}

func targetStatus(action enums.BulkOrderAction) enums.OrderStatus {
	if action == enums.BulkOrderActionMarkSent {
		return enums.OrderStatusSent
	}
	return enums.OrderStatusCanceled
}

func actionVerb(action enums.BulkOrderAction) string {
	if action == enums.BulkOrderActionMarkSent {
		return "marked sent"
	}
	return "canceled"
}

func statusAllowed(status enums.OrderStatus, allowed []enums.OrderStatus) bool {
	for _, candidate := range allowed {
		if candidate == status {
			return true
		}
	}
	return false
}
