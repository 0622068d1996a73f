package restapi

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
)

// moveAddressPattern matches a full-width Move account address: 0x plus 64
// hex digits.
var moveAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// IsMoveAddress reports whether s is a full-width 0x-prefixed Move address.
func IsMoveAddress(s string) bool {
	return moveAddressPattern.MatchString(s)
}

// RegisterValidations installs the custom binding rules used by the API.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("move_addr", func(fl validator.FieldLevel) bool {
			return IsMoveAddress(fl.Field().String())
		})
	}
}

type rewardsRequest struct {
	Addresses []string `json:"addresses" binding:"required,min=1"`
}

type rewardResult struct {
	Address string                `json:"address"`
	Success bool                  `json:"success"`
	Data    *entity.RewardHistory `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// RewardHandler serves reward-claim history for one or more addresses.
type RewardHandler struct {
	rewards port.RewardService
	logger  port.Logger
}

// NewRewardHandler creates a new reward handler.
func NewRewardHandler(rewards port.RewardService, logger port.Logger) *RewardHandler {
	return &RewardHandler{rewards: rewards, logger: logger}
}

// BatchRewardsHandler handles POST /api/rewards. Invalid addresses are
// filtered out; each valid address gets its own success or failure entry.
func (h *RewardHandler) BatchRewardsHandler(c *gin.Context) {
	var req rewardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide an array of addresses"})
		return
	}

	validAddresses := lo.Filter(req.Addresses, func(addr string, _ int) bool {
		return IsMoveAddress(addr)
	})
	if len(validAddresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No valid addresses provided. Addresses must start with 0x and be 66 characters long.",
		})
		return
	}

	results := make([]rewardResult, 0, len(validAddresses))
	for _, address := range validAddresses {
		history, err := h.rewards.GetRewardHistory(c.Request.Context(), address)
		if err != nil {
			h.logger.Warn("Reward history fetch failed", "address", address, "error", err)
			results = append(results, rewardResult{Address: address, Error: err.Error()})
			continue
		}
		results = append(results, rewardResult{Address: address, Success: true, Data: history})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
