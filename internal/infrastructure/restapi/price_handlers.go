package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"move_portfolio/internal/app/port"
)

type movePriceResponse struct {
	Success bool    `json:"success"`
	Price   float64 `json:"price"`
	Source  string  `json:"source"`
}

// PriceHandler serves the native token's spot price.
type PriceHandler struct {
	prices        port.PriceService
	fallbackPrice float64
	logger        port.Logger
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(prices port.PriceService, fallbackPrice float64, logger port.Logger) *PriceHandler {
	return &PriceHandler{
		prices:        prices,
		fallbackPrice: fallbackPrice,
		logger:        logger,
	}
}

// MovePriceHandler handles GET /api/move-price. A zero price means the cache
// had nothing usable, so the fixed fallback is served instead.
func (h *PriceHandler) MovePriceHandler(c *gin.Context) {
	price, err := h.prices.GetPrice(c.Request.Context(), "MOVE")
	if err != nil {
		h.logger.Error("MOVE price lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch price"})
		return
	}

	response := movePriceResponse{Success: true, Price: price, Source: "PriceService"}
	if price == 0 {
		response.Price = h.fallbackPrice
		response.Source = "Fallback"
	}
	c.JSON(http.StatusOK, response)
}
