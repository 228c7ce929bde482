package apiserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/telemetry"
)

// LongWaitTimeout bounds how long a status long-wait request may block.
const LongWaitTimeout = 60 * time.Second

// OrderHandler adapts HTTP requests to the order service and the in-process
// status notifier.
type OrderHandler struct {
	svc         ports.OrderService
	notifier    ports.StatusNotifier
	logger      *logger.Logger
	waitTimeout time.Duration
}

func NewOrderHandler(svc ports.OrderService, notifier ports.StatusNotifier, log *logger.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, notifier: notifier, logger: log, waitTimeout: LongWaitTimeout}
}

type createOrderRequest struct {
	SandwichID int64 `json:"sandwichId" binding:"required,gt=0"`
}

// Create places an order for the authenticated user and hands it to the
// processing tier. A failed hand-off is a server error: the order row exists
// but is already marked failed.
func (h *OrderHandler) Create(c *gin.Context) {
	user, _ := currentUser(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order body"})
		return
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), user.Username, req.SandwichID)
	switch {
	case errors.Is(err, sandwiches.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Sandwich not found"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "order_create_failed", "Failed to place order", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to place order"})
	default:
		c.JSON(http.StatusOK, order)
	}
}

// List returns every order for admins, the caller's own orders otherwise.
func (h *OrderHandler) List(c *gin.Context) {
	user, _ := currentUser(c)

	all, err := h.svc.ListOrders(c.Request.Context(), user)
	if err != nil {
		h.logger.Error(c.Request.Context(), "order_list_failed", "Failed to list orders", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, all)
}

// Get returns one order, owner-or-admin only.
func (h *OrderHandler) Get(c *gin.Context) {
	user, _ := currentUser(c)

	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order id"})
		return
	}

	order, err := h.svc.GetOrder(c.Request.Context(), user, id)
	switch {
	case errors.Is(err, orders.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your order"})
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "order_get_failed", "Failed to fetch order", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch order"})
	default:
		c.JSON(http.StatusOK, order)
	}
}

// WaitStatus blocks until the order reaches a terminal status, the timeout
// elapses, or the client goes away. Subscribing happens before the status
// check so a result landing in between is never missed.
func (h *OrderHandler) WaitStatus(c *gin.Context) {
	user, _ := currentUser(c)
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order id"})
		return
	}

	sub := h.notifier.Subscribe(id)
	defer h.notifier.Unsubscribe(sub.ID)

	order, err := h.svc.GetOrder(ctx, user, id)
	switch {
	case errors.Is(err, orders.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your order"})
		return
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	case err != nil:
		h.logger.Error(ctx, "order_wait_failed", "Failed to fetch order for long-wait", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch order"})
		return
	}

	if order.Status.IsTerminal() {
		telemetry.LongWaitOutcomes.WithLabelValues("immediate").Inc()
		c.JSON(http.StatusOK, order)
		return
	}

	timer := time.NewTimer(h.waitTimeout)
	defer timer.Stop()

	select {
	case resolved := <-sub.C:
		telemetry.LongWaitOutcomes.WithLabelValues("resolved").Inc()
		c.JSON(http.StatusOK, resolved)
	case <-timer.C:
		telemetry.LongWaitOutcomes.WithLabelValues("timeout").Inc()
		c.JSON(http.StatusRequestTimeout, gin.H{"message": "Order not ready yet"})
	case <-ctx.Done():
		// client gave up; the deferred unsubscribe releases the listener
		telemetry.LongWaitOutcomes.WithLabelValues("disconnect").Inc()
	}
}
