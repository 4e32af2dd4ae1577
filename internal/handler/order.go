package handler

import (
	"errors"
	"net/http"
	"vietqr-order-service/internal/apperr"
	"vietqr-order-service/internal/model"
	"vietqr-order-service/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	reconciler service.Reconciler
}

func NewOrderHandler(reconciler service.Reconciler) *OrderHandler {
	return &OrderHandler{
		reconciler: reconciler,
	}
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type createOrderRequest struct {
	Items         []orderItemRequest `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	TotalAmount   int64              `json:"total_amount"`
	ShippingInfo  model.ShippingInfo `json:"shipping_info"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// httpError maps the core error taxonomy onto HTTP statuses in one place.
func httpError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrUnknownTransaction):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrGatewayUnavailable), errors.Is(err, apperr.ErrGatewayRejected):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.Is(err, apperr.ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return err
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	draft := &service.OrderDraft{
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   req.TotalAmount,
		Shipping:      req.ShippingInfo,
		Items:         make([]service.DraftItem, len(req.Items)),
	}
	for i, item := range req.Items {
		draft.Items[i] = service.DraftItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.reconciler.CreateOrder(ctx, draft)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.reconciler.GetOrder(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.reconciler.Cancel(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

// UpdateStatus is the transition entry point the fulfillment system calls to
// advance processing → shipped → delivered.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.reconciler.Advance(ctx, c.Param("id"), req.Status)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}
