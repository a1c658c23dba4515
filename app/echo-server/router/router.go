package router

import (
	"recoInsight/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations")
	reco.GET("/items/:id", handler.ItemRecommendations)
	reco.GET("/users/:id", handler.UserRecommendations)

	api.GET("/strategies/items/:id", handler.ItemStrategy)
}

func SetRatingRoutes(api *echo.Group, handler *rest.RatingHandler) {
	api.POST("/ratings", handler.Ingest)
	api.GET("/analytics/items", handler.ItemPerformance)
}

func SetSimilarityRoutes(api *echo.Group, handler *rest.SimilarityHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	api.GET("/similarity/status", handler.Status)
	api.POST("/admin/similarity/rebuild", handler.Rebuild, authRequired, adminOnly)
}

func SetStrategyAdminRoutes(api *echo.Group, handler *rest.StrategyAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/strategy", authRequired, adminOnly)

	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpdateConfig)
}
