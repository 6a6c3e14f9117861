package videos

import "github.com/labstack/echo/v4"

type Handler interface {
	Push() echo.HandlerFunc
	ListQueue() echo.HandlerFunc
	Health() echo.HandlerFunc
}
