package server

import (
	"github.com/amankumarsingh77/repair-video-stitcher/internal/middleware"
	videoHttp "github.com/amankumarsingh77/repair-video-stitcher/internal/videos/delivery/http"
	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	services := NewServices(s.cfg, s.db, s.redisClient, s.s3Client, s.logger)
	videoHandlers := videoHttp.NewVideoHandler(services.VideoUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)
	e.Use(mw.RequestLoggerMiddleware)

	videoHttp.MapVideoRoutes(e, videoHandlers, mw)
	return nil
}
