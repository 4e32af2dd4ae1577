package handler

import (
	"net/http"
	"vietqr-order-service/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	reconciler service.Reconciler
}

func NewPaymentHandler(reconciler service.Reconciler) *PaymentHandler {
	return &PaymentHandler{
		reconciler: reconciler,
	}
}

type requestQRRequest struct {
	OrderID string `json:"order_id"`
}

type requestQRResponse struct {
	OrderID       string `json:"order_id"`
	QRImageRef    string `json:"qr_image_reference"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func (h *PaymentHandler) RequestQR(c echo.Context) error {
	ctx := c.Request().Context()

	var req requestQRRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order_id")
	}

	result, err := h.reconciler.RequestQR(ctx, req.OrderID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &requestQRResponse{
		OrderID:       result.Order.ID,
		QRImageRef:    result.QRImageRef,
		TransactionID: result.TransactionID,
		Status:        result.Order.Status,
	})
}
