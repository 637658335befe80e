package http

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, auth gin.HandlerFunc) {
	api := router.Group("/api/v1")
	{
		api.GET("/templates", handler.ListTemplates)
		api.GET("/templates/:id", handler.GetTemplate)

		portfolios := api.Group("/portfolios", auth)
		portfolios.POST("", handler.CreatePortfolio)
		portfolios.GET("", handler.ListPortfolios)
		portfolios.GET("/:id", handler.GetPortfolio)
		portfolios.PATCH("/:id", handler.UpdatePortfolio)
		portfolios.PATCH("/:id/sections/:sectionId", handler.UpdateSection)
		portfolios.POST("/:id/publish", handler.PublishPortfolio)
		portfolios.POST("/:id/unpublish", handler.UnpublishPortfolio)
		portfolios.DELETE("/:id", handler.DeletePortfolio)
	}

	router.GET("/p/:slug", handler.GetPublicPortfolio)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
