package enums

import "fmt"

// BulkOrderAction names the batch operations the console can run over a
// checked subset of orders.
type BulkOrderAction string

const (
	BulkOrderActionCancel   BulkOrderAction = "cancel"
	BulkOrderActionMarkSent BulkOrderAction = "mark_sent"
)

var validBulkOrderActions = []BulkOrderAction{
	BulkOrderActionCancel,
	BulkOrderActionMarkSent,
}

// String implements fmt.Stringer.
func (b BulkOrderAction) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BulkOrderAction.
func (b BulkOrderAction) IsValid() bool {
	for _, candidate := range validBulkOrderActions {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBulkOrderAction converts raw input into a BulkOrderAction.
func ParseBulkOrderAction(value string) (BulkOrderAction, error) {
	for _, candidate := range validBulkOrderActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bulk order action %q", value)
}

// AllowedStatuses returns the order statuses an action may be applied to.
func (b BulkOrderAction) AllowedStatuses() []OrderStatus {
	switch b {
	case BulkOrderActionCancel:
		return []OrderStatus{OrderStatusWaiting, OrderStatusProcessed}
	case BulkOrderActionMarkSent:
		return []OrderStatus{OrderStatusProcessed}
	default:
		return nil
	}
}
