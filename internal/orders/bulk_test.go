package orders

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medimartid/medimart-gateway/pkg/enums"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/logger"
)

type statusCall struct {
	orderID uuid.UUID
	status  enums.OrderStatus
}

type fakeStatusWriter struct {
	calls   []statusCall
	failFor map[uuid.UUID]error
}

func (f *fakeStatusWriter) UpdateOrderStatus(ctx context.Context, token string, orderID uuid.UUID, status enums.OrderStatus) error {
	if err, ok := f.failFor[orderID]; ok {
		return err
	}
	f.calls = append(f.calls, statusCall{orderID: orderID, status: status})
	return nil
}

func newBulkService(t *testing.T, writer *fakeStatusWriter) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(writer, logg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func sameVendorOrders(pharmacyID uuid.UUID, statuses ...enums.OrderStatus) []Summary {
	out := make([]Summary, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, Summary{ID: uuid.New(), PharmacyID: pharmacyID, Status: status})
	}
	return out
}

func TestValidateHomogeneous(t *testing.T) {
	t.Parallel()

	pharmacyID := uuid.New()
	tests := []struct {
		name    string
		action  enums.BulkOrderAction
		orders  []Summary
		wantErr bool
	}{
		{
			name:   "cancel waiting and processed",
			action: enums.BulkOrderActionCancel,
			orders: sameVendorOrders(pharmacyID, enums.OrderStatusWaiting, enums.OrderStatusProcessed),
		},
		{
			name:   "mark sent processed",
			action: enums.BulkOrderActionMarkSent,
			orders: sameVendorOrders(pharmacyID, enums.OrderStatusProcessed, enums.OrderStatusProcessed),
		},
		{
			name:    "empty selection",
			action:  enums.BulkOrderActionCancel,
			orders:  nil,
			wantErr: true,
		},
		{
			name:    "mark sent rejects waiting",
			action:  enums.BulkOrderActionMarkSent,
			orders:  sameVendorOrders(pharmacyID, enums.OrderStatusProcessed, enums.OrderStatusWaiting),
			wantErr: true,
		},
		{
			name:    "cancel rejects sent",
			action:  enums.BulkOrderActionCancel,
			orders:  sameVendorOrders(pharmacyID, enums.OrderStatusSent),
			wantErr: true,
		},
		{
			name:    "unknown action",
			action:  enums.BulkOrderAction("archive"),
			orders:  sameVendorOrders(pharmacyID, enums.OrderStatusWaiting),
			wantErr: true,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateHomogeneous(tc.action, tc.orders)
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateHomogeneousMixedPharmacies(t *testing.T) {
	t.Parallel()

	orders := sameVendorOrders(uuid.New(), enums.OrderStatusWaiting)
	orders = append(orders, sameVendorOrders(uuid.New(), enums.OrderStatusWaiting)...)

	err := ValidateHomogeneous(enums.BulkOrderActionCancel, orders)
	if err == nil {
		t.Fatal("expected mixed pharmacies to be rejected")
	}
	if !strings.Contains(err.Error(), "different pharmacy") {
		t.Fatalf("expected the cross-pharmacy violation named, got %q", err.Error())
	}
}

func TestValidateHomogeneousReportsEveryViolation(t *testing.T) {
	t.Parallel()

	pharmacyID := uuid.New()
	orders := sameVendorOrders(pharmacyID, enums.OrderStatusSent, enums.OrderStatusConfirmed)

	err := ValidateHomogeneous(enums.BulkOrderActionCancel, orders)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	message := err.Error()
	for _, order := range orders {
		if !strings.Contains(message, order.ID.String()) {
			t.Fatalf("expected order %s in the report, got %q", order.ID, message)
		}
	}
}

func TestApplyCancelTransitionsEveryOrder(t *testing.T) {
	t.Parallel()

	writer := &fakeStatusWriter{}
	svc := newBulkService(t, writer)
	orders := sameVendorOrders(uuid.New(), enums.OrderStatusWaiting, enums.OrderStatusProcessed)

	result, err := svc.Apply(context.Background(), "token", enums.BulkOrderActionCancel, orders)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(result.Updated) != 2 || len(result.Failed) != 0 {
		t.Fatalf("expected 2 updates, got %+v", result)
	}
	for _, call := range writer.calls {
		if call.status != enums.OrderStatusCanceled {
			t.Fatalf("expected CANCELED, got %s", call.status)
		}
	}
}

func TestApplyMarkSentTargetStatus(t *testing.T) {
	t.Parallel()

	writer := &fakeStatusWriter{}
	svc := newBulkService(t, writer)
	orders := sameVendorOrders(uuid.New(), enums.OrderStatusProcessed)

	if _, err := svc.Apply(context.Background(), "token", enums.BulkOrderActionMarkSent, orders); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if writer.calls[0].status != enums.OrderStatusSent {
		t.Fatalf("expected SENT, got %s", writer.calls[0].status)
	}
}

func TestApplyPartialUpstreamFailure(t *testing.T) {
	t.Parallel()

	orders := sameVendorOrders(uuid.New(), enums.OrderStatusWaiting, enums.OrderStatusWaiting)
	writer := &fakeStatusWriter{failFor: map[uuid.UUID]error{orders[0].ID: errors.New("boom")}}
	svc := newBulkService(t, writer)

	result, err := svc.Apply(context.Background(), "token", enums.BulkOrderActionCancel, orders)
	if err != nil {
		t.Fatalf("partial failure must not fail the batch: %v", err)
	}
	if len(result.Updated) != 1 || len(result.Failed) != 1 {
		t.Fatalf("expected 1 updated and 1 failed, got %+v", result)
	}
	if result.Failed[0] != orders[0].ID {
		t.Fatal("the failed order id must be reported")
	}
}

func TestApplyAllUpstreamFailures(t *testing.T) {
	t.Parallel()

	orders := sameVendorOrders(uuid.New(), enums.OrderStatusWaiting)
	writer := &fakeStatusWriter{failFor: map[uuid.UUID]error{orders[0].ID: errors.New("boom")}}
	svc := newBulkService(t, writer)

	_, err := svc.Apply(context.Background(), "token", enums.BulkOrderActionCancel, orders)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUpstream {
		t.Fatalf("expected upstream error when nothing updated, got %v", err)
	}
}

func TestApplyRejectsInvalidBatchBeforeAnyWrite(t *testing.T) {
	t.Parallel()

	writer := &fakeStatusWriter{}
	svc := newBulkService(t, writer)
	orders := sameVendorOrders(uuid.New(), enums.OrderStatusWaiting, enums.OrderStatusSent)

	if _, err := svc.Apply(context.Background(), "token", enums.BulkOrderActionCancel, orders); err == nil {
		t.Fatal("expected the batch to be rejected")
	}
	if len(writer.calls) != 0 {
		t.Fatalf("no write may happen for an invalid batch, got %d", len(writer.calls))
	}
}
