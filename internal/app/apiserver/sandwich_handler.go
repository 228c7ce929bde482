package apiserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// SandwichHandler adapts HTTP requests to the catalog service.
type SandwichHandler struct {
	svc    ports.SandwichService
	logger *logger.Logger
}

func NewSandwichHandler(svc ports.SandwichService, log *logger.Logger) *SandwichHandler {
	return &SandwichHandler{svc: svc, logger: log}
}

type sandwichRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	BreadType  string  `json:"breadType" binding:"required,breadtype"`
	ToppingIDs []int64 `json:"toppingIds" binding:"omitempty,dive,gt=0"`
}

// utilsResponse feeds catalog editors the valid building blocks.
type utilsResponse struct {
	BreadTypes []string             `json:"breadTypes"`
	Toppings   []sandwiches.Topping `json:"toppings"`
}

func (h *SandwichHandler) List(c *gin.Context) {
	all, err := h.svc.ListSandwiches(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "sandwich_list_failed", "Failed to list sandwiches", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list sandwiches"})
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *SandwichHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("sandwichId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid sandwich id"})
		return
	}

	sw, err := h.svc.GetSandwich(c.Request.Context(), id)
	switch {
	case errors.Is(err, sandwiches.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Sandwich not found"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "sandwich_get_failed", "Failed to fetch sandwich", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch sandwich"})
	default:
		c.JSON(http.StatusOK, sw)
	}
}

// Utils lists the valid bread types and the topping catalog.
func (h *SandwichHandler) Utils(c *gin.Context) {
	toppings, err := h.svc.ListToppings(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "topping_list_failed", "Failed to list toppings", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list toppings"})
		return
	}
	c.JSON(http.StatusOK, utilsResponse{BreadTypes: sandwiches.BreadTypes, Toppings: toppings})
}

// Create adds a catalog entry. Admin only (enforced by the route).
func (h *SandwichHandler) Create(c *gin.Context) {
	var req sandwichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid sandwich body"})
		return
	}

	sw, err := h.svc.CreateSandwich(c.Request.Context(), req.Name, req.BreadType, req.ToppingIDs)
	switch {
	case errors.Is(err, sandwiches.ErrUnknownTopping):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown topping id"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "sandwich_create_failed", "Failed to create sandwich", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to create sandwich"})
	default:
		c.JSON(http.StatusCreated, sw)
	}
}

// Update replaces a catalog entry. Admin only (enforced by the route).
func (h *SandwichHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("sandwichId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid sandwich id"})
		return
	}

	var req sandwichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid sandwich body"})
		return
	}

	sw, err := h.svc.UpdateSandwich(c.Request.Context(), id, req.Name, req.BreadType, req.ToppingIDs)
	switch {
	case errors.Is(err, sandwiches.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Sandwich not found"})
	case errors.Is(err, sandwiches.ErrUnknownTopping):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown topping id"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "sandwich_update_failed", "Failed to update sandwich", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to update sandwich"})
	default:
		c.JSON(http.StatusOK, sw)
	}
}

// Delete removes a catalog entry. Admin only (enforced by the route).
func (h *SandwichHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("sandwichId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid sandwich id"})
		return
	}

	err = h.svc.DeleteSandwich(c.Request.Context(), id)
	switch {
	case errors.Is(err, sandwiches.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Sandwich not found"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "sandwich_delete_failed", "Failed to delete sandwich", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete sandwich"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Sandwich deleted"})
	}
}
