package service

import "github.com/compoundrx/storefront/internal/constants"

// allowedTransitions is the forward-only order status graph. Cancellation is
// reachable from pending only; everything after processing moves toward
// delivery.
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {},
	constants.OrderStatusCancelled: {},
}

// isTransitionAllowed reports whether current may move to target. Repeating
// the current status is allowed so replayed updates stay idempotent.
func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	targets, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return targets[target]
}
