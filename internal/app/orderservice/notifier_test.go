package orderservice

import (
	"testing"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
)

func TestNotifierResolvesSubscribers(t *testing.T) {
	n := NewNotifier()
	subA := n.Subscribe(7)
	subB := n.Subscribe(7)
	other := n.Subscribe(8)

	n.Publish(orders.Order{ID: 7, Status: orders.StatusReady})

	for _, sub := range []struct {
		name string
		c    <-chan orders.Order
	}{{"subA", subA.C}, {"subB", subB.C}} {
		select {
		case got := <-sub.c:
			if got.ID != 7 || got.Status != orders.StatusReady {
				t.Errorf("%s received %+v", sub.name, got)
			}
		default:
			t.Errorf("%s not resolved", sub.name)
		}
	}

	select {
	case got := <-other.C:
		t.Errorf("subscriber for order 8 received %+v", got)
	default:
	}
}

func TestNotifierSubscriptionsAreOneShot(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe(5)

	n.Publish(orders.Order{ID: 5, Status: orders.StatusFailed})
	<-sub.C

	// a second publish must not reach the already-resolved subscription
	n.Publish(orders.Order{ID: 5, Status: orders.StatusReady})
	select {
	case got := <-sub.C:
		t.Errorf("resolved subscription received %+v", got)
	default:
	}
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe(3)
	n.Unsubscribe(sub.ID)

	n.Publish(orders.Order{ID: 3, Status: orders.StatusReady})
	select {
	case got := <-sub.C:
		t.Errorf("unsubscribed listener received %+v", got)
	default:
	}

	// double unsubscribe and unsubscribe-after-publish are no-ops
	n.Unsubscribe(sub.ID)
	resolved := n.Subscribe(4)
	n.Publish(orders.Order{ID: 4, Status: orders.StatusReady})
	n.Unsubscribe(resolved.ID)
}

func TestNotifierPublishWithoutListeners(t *testing.T) {
	n := NewNotifier()
	// no listener registered: the notification is simply lost
	n.Publish(orders.Order{ID: 42, Status: orders.StatusReady})
}
