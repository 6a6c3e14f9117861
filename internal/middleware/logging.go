package middleware

import (
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/pkg/utils"
	"github.com/labstack/echo/v4"
)

func (mw *MiddlewareManager) RequestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		req := c.Request()
		res := c.Response()
		mw.logger.Infof("RequestID: %s, Method: %s, URI: %s, Status: %v, Size: %v, Time: %s",
			utils.GetRequestID(c), req.Method, req.URL.String(), res.Status, res.Size, time.Since(start))
		return err
	}
}
