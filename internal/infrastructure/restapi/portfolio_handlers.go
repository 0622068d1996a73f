package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
)

// APIPortfolioResponse is the envelope for the portfolio endpoint. Section
// failures ride along in service_errors instead of failing the request.
type APIPortfolioResponse struct {
	Data struct {
		Portfolio *entity.Portfolio `json:"portfolio"`
	} `json:"data"`
	ServiceErrors []entity.PortfolioError `json:"service_errors,omitempty"`
	StatusMessage string                  `json:"status_message"`
}

// PortfolioHandler serves aggregated wallet views.
type PortfolioHandler struct {
	portfolio port.PortfolioService
	rewards   port.RewardService
	positions port.PositionService
	history   port.HistoryService
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(
	portfolio port.PortfolioService,
	rewards port.RewardService,
	positions port.PositionService,
	history port.HistoryService,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		rewards:   rewards,
		positions: positions,
		history:   history,
	}
}

// requireAddress validates the :address path parameter.
func requireAddress(c *gin.Context) (string, bool) {
	address := c.Param("address")
	if !IsMoveAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Address must start with 0x and be 66 characters long.",
		})
		return "", false
	}
	return address, true
}

// GetPortfolioHandler handles GET /api/v1/portfolios/:address.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	address, ok := requireAddress(c)
	if !ok {
		return
	}

	portfolio, serviceErrors := h.portfolio.GetPortfolio(c.Request.Context(), address)

	response := APIPortfolioResponse{ServiceErrors: serviceErrors}
	response.Data.Portfolio = portfolio

	switch {
	case len(serviceErrors) > 0:
		response.StatusMessage = "Portfolio retrieved. Some sections encountered errors."
	default:
		response.StatusMessage = "Portfolio retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

// GetRewardsHandler handles GET /api/v1/portfolios/:address/rewards.
func (h *PortfolioHandler) GetRewardsHandler(c *gin.Context) {
	address, ok := requireAddress(c)
	if !ok {
		return
	}

	history, err := h.rewards.GetRewardHistory(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetPositionsHandler handles GET /api/v1/portfolios/:address/positions.
func (h *PortfolioHandler) GetPositionsHandler(c *gin.Context) {
	address, ok := requireAddress(c)
	if !ok {
		return
	}

	positions, err := h.positions.GetPositions(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}

// GetHistoryHandler handles GET /api/v1/portfolios/:address/history.
func (h *PortfolioHandler) GetHistoryHandler(c *gin.Context) {
	address, ok := requireAddress(c)
	if !ok {
		return
	}

	history, err := h.history.GetBalanceHistory(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}
