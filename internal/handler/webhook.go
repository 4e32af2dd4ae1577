package handler

import (
	"errors"
	"io"
	"net/http"
	"vietqr-order-service/internal/apperr"
	"vietqr-order-service/internal/webhook"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	ingress *webhook.Ingress
}

func NewWebhookHandler(ingress *webhook.Ingress) *WebhookHandler {
	return &WebhookHandler{
		ingress: ingress,
	}
}

// PaymentWebhook acknowledges every authenticated delivery with 200 —
// duplicates and unknown transactions included — so the provider never
// enters a redelivery storm. Only a failed signature check gets a 401.
func (h *WebhookHandler) PaymentWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.ingress.Receive(ctx, body, c.Request().Header.Get(webhook.SignatureHeader))

	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, apperr.ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	case errors.Is(err, apperr.ErrDuplicateEvent):
		return c.JSON(http.StatusOK, map[string]string{"status": "duplicate"})
	default:
		// logged by the ingress; acknowledged so the provider stops retrying
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}
}
