package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはルーティング済みのechoアプリを組み立てる。
func New(
	cfg config.Config,
	authH *handler.AuthHandler,
	catalogH *handler.CatalogHandler,
	orderH *handler.OrderHandler,
	ordersH *handler.OrdersHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	authH.RegisterRoutes(e)
	catalogH.RegisterRoutes(e)
	orderH.RegisterRoutes(e, cfg)
	ordersH.RegisterRoutes(e, cfg)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
