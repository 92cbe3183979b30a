package service

import (
	"testing"

	"github.com/compoundrx/storefront/internal/constants"
)

func TestIsTransitionAllowed(t *testing.T) {
	cases := []struct {
		current string
		target  string
		want    bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusProcessing, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusPending, constants.OrderStatusDelivered, false},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped, true},
		{constants.OrderStatusProcessing, constants.OrderStatusCancelled, false},
		{constants.OrderStatusProcessing, constants.OrderStatusPending, false},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusShipped, constants.OrderStatusProcessing, false},
		{constants.OrderStatusDelivered, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusPending, false},
		{constants.OrderStatusCancelled, constants.OrderStatusProcessing, false},
		// Repeating the current status stays allowed for replay safety.
		{constants.OrderStatusPending, constants.OrderStatusPending, true},
		{constants.OrderStatusDelivered, constants.OrderStatusDelivered, true},
		// Unknown statuses go nowhere.
		{"refunded", constants.OrderStatusPending, false},
	}
	for _, tc := range cases {
		if got := isTransitionAllowed(tc.current, tc.target); got != tc.want {
			t.Errorf("%s -> %s: want %v, got %v", tc.current, tc.target, tc.want, got)
		}
	}
}
