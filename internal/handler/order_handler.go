package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /order のHTTP（作業中の注文と数量操作）
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type setQtyRequest struct {
	Qty int `json:"qty"`
}

type palletModeRequest struct {
	Enabled bool `json:"enabled"`
}

// /order 以下を登録
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/order")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.get)
	g.PUT("/lines/:sku", h.putLine)
	g.DELETE("/lines/:sku", h.deleteLine)
	g.POST("/lines/:sku/increment", h.increment)
	g.POST("/lines/:sku/decrement", h.decrement)
	g.PUT("/lines/:sku/pallet-mode", h.putPalletMode)
	g.POST("/prompt/dismiss", h.dismissPrompt)
}

func (h *OrderHandler) get(c echo.Context) error {
	out, err := h.uc.WorkingOrder(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) putLine(c echo.Context) error {
	var req setQtyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetQuantity(c.Request().Context(), c.Param("sku"), req.Qty); err != nil {
		return writeError(c, err)
	}
	return h.get(c)
}

func (h *OrderHandler) deleteLine(c echo.Context) error {
	if err := h.uc.RemoveLine(c.Request().Context(), c.Param("sku")); err != nil {
		return writeError(c, err)
	}
	return h.get(c)
}

func (h *OrderHandler) increment(c echo.Context) error {
	if err := h.uc.Increment(c.Request().Context(), c.Param("sku")); err != nil {
		return writeError(c, err)
	}
	return h.get(c)
}

func (h *OrderHandler) decrement(c echo.Context) error {
	if err := h.uc.Decrement(c.Request().Context(), c.Param("sku")); err != nil {
		return writeError(c, err)
	}
	return h.get(c)
}

func (h *OrderHandler) putPalletMode(c echo.Context) error {
	var req palletModeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetPalletMode(c.Request().Context(), c.Param("sku"), req.Enabled); err != nil {
		return writeError(c, err)
	}
	return h.get(c)
}

func (h *OrderHandler) dismissPrompt(c echo.Context) error {
	h.uc.DismissPrompt()
	return h.get(c)
}
