package utils

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
)

type CallerCtxKey struct{}

// GetCallerFromCtx returns the claims of the authenticated operator.
func GetCallerFromCtx(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(CallerCtxKey{}).(*Claims)
	if !ok {
		return nil, fmt.Errorf("caller not found in context")
	}
	return claims, nil
}

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func GetIPAddress(c echo.Context) string {
	return c.RealIP()
}
