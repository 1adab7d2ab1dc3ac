package router

import (
	"profileHub/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupEventRoutes(api *echo.Group, handler *rest.EventHandler) {
	events := api.Group("/events")
	events.POST("", handler.Record)
	events.POST("/batch", handler.RecordBatch)
	events.GET("/:userId", handler.UserEvents)
}

func SetupProfileRoutes(api *echo.Group, handler *rest.ProfileHandler) {
	profiles := api.Group("/profiles")
	profiles.GET("", handler.GetAll)
	profiles.PUT("", handler.Upsert)
	profiles.POST("/initialize", handler.Initialize)
	profiles.GET("/:userId", handler.Get)
	profiles.POST("/:userId/recalculate", handler.Recalculate)
	profiles.GET("/:userId/insights", handler.Insights)
	profiles.DELETE("/:userId", handler.Delete)
}

func SetupAnalyticsRoutes(api *echo.Group, handler *rest.AnalyticsHandler) {
	analytics := api.Group("/analytics")
	analytics.GET("/:userId/behavior", handler.Behavior)
	analytics.GET("/:userId/rfm", handler.RFM)
	analytics.GET("/:userId/churn-risk", handler.ChurnRisk)
	analytics.GET("/:userId/funnel", handler.Funnel)
}

func SetupSegmentRoutes(api *echo.Group, handler *rest.SegmentHandler) {
	segments := api.Group("/segments")
	segments.POST("", handler.Create)
	segments.GET("", handler.GetAll)
	segments.GET("/:id", handler.GetByID)
	segments.POST("/auto/:strategy", handler.AutoSegment)
	segments.POST("/refresh", handler.Refresh)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations")
	reco.GET("/:userId", handler.Recommend)
}

func SetupTagRoutes(api *echo.Group, handler *rest.TagHandler) {
	tags := api.Group("/tags")
	tags.POST("", handler.Upsert)
	tags.POST("/batch", handler.UpsertBatch)
	tags.GET("/:userId", handler.UserTags)
	tags.PATCH("/:userId/weight", handler.AdjustWeight)
	tags.POST("/:userId/dedupe", handler.Deduplicate)
}
