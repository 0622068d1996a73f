package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
)

type addressBookRequest struct {
	Username string `json:"username" binding:"required"`
	Address  string `json:"address" binding:"required,move_addr"`
}

// AddressBookHandler serves the persisted address book.
type AddressBookHandler struct {
	store  port.AddressBookStore
	logger port.Logger
}

// NewAddressBookHandler creates a new address book handler.
func NewAddressBookHandler(store port.AddressBookStore, logger port.Logger) *AddressBookHandler {
	return &AddressBookHandler{store: store, logger: logger}
}

// ListHandler handles GET /api/v1/addressbook.
func (h *AddressBookHandler) ListHandler(c *gin.Context) {
	entries, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Address book list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list address book"})
		return
	}
	if entries == nil {
		entries = []entity.AddressBookEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddHandler handles POST /api/v1/addressbook.
func (h *AddressBookHandler) AddHandler(c *gin.Context) {
	var req addressBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and a valid 0x address are required"})
		return
	}

	entry, err := h.store.Add(c.Request.Context(), req.Username, req.Address)
	if err != nil {
		h.logger.Error("Address book insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save entry"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateHandler handles PUT /api/v1/addressbook/:id.
func (h *AddressBookHandler) UpdateHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req addressBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and a valid 0x address are required"})
		return
	}

	entry, err := h.store.Update(c.Request.Context(), id, req.Username, req.Address)
	if errors.Is(err, entity.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		h.logger.Error("Address book update failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteHandler handles DELETE /api/v1/addressbook/:id.
func (h *AddressBookHandler) DeleteHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	err = h.store.Delete(c.Request.Context(), id)
	if errors.Is(err, entity.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		h.logger.Error("Address book delete failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}
	c.Status(http.StatusNoContent)
}
