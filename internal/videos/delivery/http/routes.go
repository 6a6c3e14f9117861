package http

import (
	"github.com/amankumarsingh77/repair-video-stitcher/internal/middleware"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/labstack/echo/v4"
)

func MapVideoRoutes(e *echo.Echo, h videos.Handler, mw *middleware.MiddlewareManager) {
	e.POST("/", h.Push())
	e.GET("/health", h.Health())
	e.GET("/queue", h.ListQueue(), mw.BearerAuthMiddleware())
}
