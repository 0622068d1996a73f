package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Proxy       *ProxyHandler
	Price       *PriceHandler
	Rewards     *RewardHandler
	Portfolio   *PortfolioHandler
	AddressBook *AddressBookHandler
}

// RegisterRoutes mounts the API surface on the given engine. Middleware
// (CORS, logging, recovery) is the caller's responsibility.
func RegisterRoutes(router *gin.Engine, h Handlers) {
	RegisterValidations()

	api := router.Group("/api")
	{
		api.POST("/indexer", h.Proxy.ForwardHandler)
		api.GET("/move-price", h.Price.MovePriceHandler)
		api.POST("/rewards", h.Rewards.BatchRewardsHandler)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolios/:address", h.Portfolio.GetPortfolioHandler)
		v1.GET("/portfolios/:address/rewards", h.Portfolio.GetRewardsHandler)
		v1.GET("/portfolios/:address/positions", h.Portfolio.GetPositionsHandler)
		v1.GET("/portfolios/:address/history", h.Portfolio.GetHistoryHandler)

		if h.AddressBook != nil {
			v1.GET("/addressbook", h.AddressBook.ListHandler)
			v1.POST("/addressbook", h.AddressBook.AddHandler)
			v1.PUT("/addressbook/:id", h.AddressBook.UpdateHandler)
			v1.DELETE("/addressbook/:id", h.AddressBook.DeleteHandler)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
