package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SalonenTeemu/sandwich-store/internal/app/orderservice"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// scriptedOrderService serves canned orders keyed by id.
type scriptedOrderService struct {
	mu     sync.Mutex
	orders map[int64]orders.Order
}

func (s *scriptedOrderService) set(o orders.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
}

func (s *scriptedOrderService) PlaceOrder(context.Context, string, int64) (*orders.Order, error) {
	panic("not used")
}

func (s *scriptedOrderService) GetOrder(_ context.Context, principal *users.User, id int64) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	if !principal.IsAdmin() && !o.OwnedBy(principal.Username) {
		return nil, orders.ErrForbidden
	}
	return &o, nil
}

func (s *scriptedOrderService) ListOrders(context.Context, *users.User) ([]orders.Order, error) {
	panic("not used")
}

func newWaitFixture(t *testing.T, as *users.User) (*scriptedOrderService, *orderservice.Notifier, *gin.Engine, *OrderHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &scriptedOrderService{orders: make(map[int64]orders.Order)}
	notifier := orderservice.NewNotifier()
	h := NewOrderHandler(svc, notifier, logger.NewLogger("test"))

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(principalKey, as) })
	r.GET("/order/:orderId/status", h.WaitStatus)
	return svc, notifier, r, h
}

func TestWaitStatusImmediateWhenTerminal(t *testing.T) {
	owner := &users.User{Username: "teemu", Role: users.RoleCustomer}
	svc, _, r, _ := newWaitFixture(t, owner)
	svc.set(orders.Order{ID: 1, Customer: "teemu", SandwichID: 2, Status: orders.StatusReady})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order/1/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
	var got orders.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != orders.StatusReady {
		t.Errorf("status = %s, want ready", got.Status)
	}
}

func TestWaitStatusResolvesOnNotification(t *testing.T) {
	owner := &users.User{Username: "teemu", Role: users.RoleCustomer}
	svc, notifier, r, _ := newWaitFixture(t, owner)
	svc.set(orders.Order{ID: 5, Customer: "teemu", SandwichID: 2, Status: orders.StatusInQueue})

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order/5/status", nil))
		done <- w
	}()

	// let the handler subscribe before resolving
	time.Sleep(50 * time.Millisecond)
	notifier.Publish(orders.Order{ID: 5, Customer: "teemu", SandwichID: 2, Status: orders.StatusReady})

	select {
	case w := <-done:
		if w.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", w.Code)
		}
		var got orders.Order
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.Status != orders.StatusReady {
			t.Errorf("status = %s, want ready", got.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("long-wait did not resolve after notification")
	}
}

func TestWaitStatusTimesOut(t *testing.T) {
	owner := &users.User{Username: "teemu", Role: users.RoleCustomer}
	svc, _, r, h := newWaitFixture(t, owner)
	h.waitTimeout = 50 * time.Millisecond
	svc.set(orders.Order{ID: 3, Customer: "teemu", SandwichID: 1, Status: orders.StatusInQueue})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order/3/status", nil))

	if w.Code != http.StatusRequestTimeout {
		t.Fatalf("code = %d, want 408", w.Code)
	}
}

func TestWaitStatusClientDisconnectReleasesListener(t *testing.T) {
	owner := &users.User{Username: "teemu", Role: users.RoleCustomer}
	svc, notifier, r, _ := newWaitFixture(t, owner)
	svc.set(orders.Order{ID: 8, Customer: "teemu", SandwichID: 2, Status: orders.StatusInQueue})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/order/8/status", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(httptest.NewRecorder(), req)
		close(done)
	}()

	// let the handler subscribe, then hang up mid-wait
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after client disconnect")
	}

	// the slot is released: a fresh listener for the same order still resolves
	sub := notifier.Subscribe(8)
	defer notifier.Unsubscribe(sub.ID)
	notifier.Publish(orders.Order{ID: 8, Customer: "teemu", SandwichID: 2, Status: orders.StatusReady})

	select {
	case got := <-sub.C:
		if got.Status != orders.StatusReady {
			t.Errorf("status = %s, want ready", got.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fresh subscription never resolved")
	}
}

func TestWaitStatusForbiddenForStranger(t *testing.T) {
	stranger := &users.User{Username: "other", Role: users.RoleCustomer}
	svc, _, r, _ := newWaitFixture(t, stranger)
	svc.set(orders.Order{ID: 2, Customer: "teemu", SandwichID: 1, Status: orders.StatusInQueue})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order/2/status", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", w.Code)
	}
}

func TestWaitStatusUnknownOrder(t *testing.T) {
	owner := &users.User{Username: "teemu", Role: users.RoleCustomer}
	_, _, r, _ := newWaitFixture(t, owner)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order/77/status", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order/zero/status", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}
