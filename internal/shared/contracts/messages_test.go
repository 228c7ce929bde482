package contracts

import (
	"errors"
	"testing"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
)

func TestResultRoundTrip(t *testing.T) {
	order := orders.Order{ID: 42, Customer: "maija", SandwichID: 7, Status: orders.StatusInQueue}

	task, err := TaskBody(order)
	if err != nil {
		t.Fatalf("TaskBody: %v", err)
	}
	body, err := ResultBody(task, ResultReady)
	if err != nil {
		t.Fatalf("ResultBody: %v", err)
	}

	decoded, status, err := DecodeResult(body)
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	if status != ResultReady {
		t.Errorf("status = %q, want %q", status, ResultReady)
	}
	if decoded.ID != 42 || decoded.Customer != "maija" || decoded.SandwichID != 7 {
		t.Errorf("decoded order = %+v", decoded)
	}
}

func TestDecodeResultNestedStringPayload(t *testing.T) {
	// the order field is a string-encoded document, not a nested object
	body := []byte(`{"order":"{\"id\":5,\"customer\":\"teemu\",\"sandwichId\":2,\"status\":\"in_queue\"}","status":"failed"}`)

	order, status, err := DecodeResult(body)
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	if order.ID != 5 || status != ResultFailed {
		t.Errorf("got order %+v, status %q", order, status)
	}
}

func TestDecodeResultMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `garbage`},
		{"empty order", `{"order":"","status":"ready"}`},
		{"null order", `{"order":"null","status":"ready"}`},
		{"order not json", `{"order":"not-json","status":"ready"}`},
		{"zero order id", `{"order":"{\"customer\":\"x\"}","status":"ready"}`},
	}
	for _, tc := range cases {
		if _, _, err := DecodeResult([]byte(tc.body)); err == nil {
			t.Errorf("%s: DecodeResult accepted %q", tc.name, tc.body)
		}
	}
}

func TestDecodeResultEmptyOrderSentinel(t *testing.T) {
	_, _, err := DecodeResult([]byte(`{"order":"","status":"ready"}`))
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("err = %v, want ErrEmptyOrder", err)
	}
}
