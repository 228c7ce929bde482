package orderservice

import (
	"context"
	"errors"
	"sync"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger("test")
}

// passthroughUOW runs the function without a real transaction.
type passthroughUOW struct{}

func (passthroughUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memOrdersRepo is an in-memory stand-in for the Postgres orders repository.
type memOrdersRepo struct {
	mu     sync.Mutex
	nextID int64
	store  map[int64]orders.Order
	// setStatusErr makes SetStatus fail when set.
	setStatusErr error
}

func newMemOrdersRepo() *memOrdersRepo {
	return &memOrdersRepo{store: make(map[int64]orders.Order)}
}

func (r *memOrdersRepo) Create(_ context.Context, o *orders.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	o.Status = orders.StatusReceived
	r.store[o.ID] = *o
	return nil
}

func (r *memOrdersRepo) GetByID(_ context.Context, id int64) (*orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.store[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	return &o, nil
}

func (r *memOrdersRepo) ListAll(_ context.Context) ([]orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]orders.Order, 0, len(r.store))
	for _, o := range r.store {
		out = append(out, o)
	}
	return out, nil
}

func (r *memOrdersRepo) ListByCustomer(_ context.Context, username string) ([]orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orders.Order
	for _, o := range r.store {
		if o.Customer == username {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrdersRepo) SetStatus(_ context.Context, id int64, next orders.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setStatusErr != nil {
		return r.setStatusErr
	}
	o, ok := r.store[id]
	if !ok {
		return orders.ErrNotFound
	}
	if !orders.CanTransition(o.Status, next) {
		return orders.ErrInvalidTransition
	}
	o.Status = next
	r.store[id] = o
	return nil
}

func (r *memOrdersRepo) ApplyTerminalStatus(_ context.Context, id int64, next orders.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.store[id]
	if !ok || o.Status.IsTerminal() {
		return false, nil
	}
	o.Status = next
	r.store[id] = o
	return true, nil
}

func (r *memOrdersRepo) status(id int64) orders.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store[id].Status
}

// stubPublisher records published task bodies and reports a canned
// confirmation.
type stubPublisher struct {
	mu        sync.Mutex
	published [][]byte
	failWith  error
	confirm   bool
}

func (p *stubPublisher) PublishTask(_ context.Context, body []byte) (<-chan bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	p.published = append(p.published, body)
	ch := make(chan bool, 1)
	ch <- p.confirm
	return ch, nil
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

// recordingNotifier captures published orders instead of fanning them out.
type recordingNotifier struct {
	Notifier
	mu        sync.Mutex
	published []orders.Order
}

func (n *recordingNotifier) Publish(order orders.Order) {
	n.mu.Lock()
	n.published = append(n.published, order)
	n.mu.Unlock()
}

func (n *recordingNotifier) last() (orders.Order, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.published) == 0 {
		return orders.Order{}, false
	}
	return n.published[len(n.published)-1], true
}

// memSandwichesRepo serves a fixed catalog for order placement tests.
type memSandwichesRepo struct {
	known map[int64]sandwiches.Sandwich
}

func (r *memSandwichesRepo) Create(context.Context, *sandwiches.Sandwich, []int64) error {
	return errors.New("not implemented")
}

func (r *memSandwichesRepo) GetByID(_ context.Context, id int64) (*sandwiches.Sandwich, error) {
	sw, ok := r.known[id]
	if !ok {
		return nil, sandwiches.ErrNotFound
	}
	return &sw, nil
}

func (r *memSandwichesRepo) ListAll(context.Context) ([]sandwiches.Sandwich, error) {
	return nil, errors.New("not implemented")
}

func (r *memSandwichesRepo) Update(context.Context, *sandwiches.Sandwich, []int64) error {
	return errors.New("not implemented")
}

func (r *memSandwichesRepo) Delete(context.Context, int64) error {
	return errors.New("not implemented")
}

func (r *memSandwichesRepo) ListToppings(context.Context) ([]sandwiches.Topping, error) {
	return nil, errors.New("not implemented")
}
