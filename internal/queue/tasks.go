package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/compoundrx/storefront/internal/constants"
)

// OrderTimeoutCancelPayload carries the order to cancel when its payment window elapses.
type OrderTimeoutCancelPayload struct {
	OrderID uint   `json:"order_id"` // Order record ID
	OrderNo string `json:"order_no"` // Order number, for log correlation
}

// NewOrderTimeoutCancelTask builds the delayed cancel task for a pending order.
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskOrderTimeoutCancel, data), nil
}

// ParseOrderTimeoutCancelPayload decodes the payload of an order timeout cancel task.
func ParseOrderTimeoutCancelPayload(task *asynq.Task) (OrderTimeoutCancelPayload, error) {
	var payload OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OrderTimeoutCancelPayload{}, err
	}
	return payload, nil
}
