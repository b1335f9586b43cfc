package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders のHTTP（保存済み注文の管理）
type OrdersHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrdersHandler(uc *usecase.OrderUsecase) *OrdersHandler {
	return &OrdersHandler{uc: uc}
}

type createOrderRequest struct {
	// 空なら「日付 - Order N」を提案名として使う
	Name string `json:"name"`
	// 作業中の行を新しい注文へ持ち込むか
	CarryLines bool `json:"carry_lines"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// /orders 以下を登録
func (h *OrdersHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/:id/load", h.load)
	g.DELETE("/:id", h.delete)
	g.PUT("/current/name", h.renameCurrent)
}

func (h *OrdersHandler) list(c echo.Context) error {
	out, err := h.uc.Orders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrdersHandler) create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), usecase.CreateOrderInput{
		Name:       req.Name,
		CarryLines: req.CarryLines,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrdersHandler) load(c echo.Context) error {
	if err := h.uc.LoadOrder(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return h.list(c)
}

func (h *OrdersHandler) delete(c echo.Context) error {
	if err := h.uc.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return h.list(c)
}

func (h *OrdersHandler) renameCurrent(c echo.Context) error {
	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.RenameCurrent(c.Request().Context(), req.Name); err != nil {
		return writeError(c, err)
	}
	return h.list(c)
}
