package contracts

import (
	"encoding/json"
	"errors"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
)

// Result statuses accepted on the ready queue.
const (
	ResultReady  = "ready"
	ResultFailed = "failed"
)

// ErrEmptyOrder marks a result message whose order payload is absent.
var ErrEmptyOrder = errors.New("result message carries no order payload")

// TaskBody serializes the full order as the task message body. The worker
// treats it as an opaque payload and echoes it back verbatim.
func TaskBody(order orders.Order) ([]byte, error) {
	return json.Marshal(order)
}

// ResultMessage is the wire format on the ready queue. Order is the
// string-encoded original task payload, not a nested JSON object.
type ResultMessage struct {
	Order  string `json:"order"`
	Status string `json:"status"`
}

// ResultBody builds a result message echoing the original task payload.
func ResultBody(taskPayload []byte, status string) ([]byte, error) {
	return json.Marshal(ResultMessage{Order: string(taskPayload), Status: status})
}

// DecodeResult parses a result body and the nested order payload.
func DecodeResult(body []byte) (orders.Order, string, error) {
	var msg ResultMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return orders.Order{}, "", err
	}
	if msg.Order == "" || msg.Order == "null" {
		return orders.Order{}, msg.Status, ErrEmptyOrder
	}

	var order orders.Order
	if err := json.Unmarshal([]byte(msg.Order), &order); err != nil {
		return orders.Order{}, msg.Status, err
	}
	if order.ID == 0 {
		return orders.Order{}, msg.Status, ErrEmptyOrder
	}
	return order, msg.Status, nil
}
