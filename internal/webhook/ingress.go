package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"vietqr-order-service/internal/apperr"
	"vietqr-order-service/internal/model"
	"vietqr-order-service/internal/service"

	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body,
// computed with the shared webhook secret.
const SignatureHeader = "X-Signature"

// Ingress authenticates and deduplicates inbound provider notifications
// before anything touches order state. It fails closed: an event that cannot
// be authenticated never reaches the reconciler.
type Ingress struct {
	secret     []byte
	window     *DedupWindow
	reconciler service.Reconciler
	logger     *zap.SugaredLogger
}

func NewIngress(secret string, window *DedupWindow, reconciler service.Reconciler, logger *zap.SugaredLogger) *Ingress {
	return &Ingress{
		secret:     []byte(secret),
		window:     window,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (i *Ingress) VerifySignature(body []byte, signature string) error {
	given, err := hex.DecodeString(signature)
	if err != nil || len(given) == 0 {
		return fmt.Errorf("%w: malformed signature", apperr.ErrAuthentication)
	}

	mac := hmac.New(sha256.New, i.secret)
	mac.Write(body)
	if !hmac.Equal(given, mac.Sum(nil)) {
		return fmt.Errorf("%w: signature mismatch", apperr.ErrAuthentication)
	}

	return nil
}

// Receive processes one webhook delivery. Non-nil errors classify the
// outcome; of these only ErrAuthentication warrants a non-200 response —
// everything else is acknowledged so the provider stops redelivering.
func (i *Ingress) Receive(ctx context.Context, body []byte, signature string) error {
	if err := i.VerifySignature(body, signature); err != nil {
		i.logger.Warnw("webhook rejected", "reason", err.Error())
		return err
	}

	var event model.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: decode webhook payload: %v", apperr.ErrValidation, err)
	}
	if event.TransactionID == "" {
		return fmt.Errorf("%w: missing transaction_id", apperr.ErrValidation)
	}
	event.ReceivedAt = time.Now()

	if i.window.Contains(event.TransactionID, event.ReceivedAt) {
		i.logger.Infow("duplicate webhook delivery", "transaction_id", event.TransactionID)
		return fmt.Errorf("%w: %s", apperr.ErrDuplicateEvent, event.TransactionID)
	}

	order, err := i.reconciler.ApplyPaymentEvent(ctx, &event)
	if err != nil {
		// not recorded in the window: an event that was never applied must
		// stay eligible for redelivery (e.g. it raced ahead of the attach)
		switch {
		case errors.Is(err, apperr.ErrUnknownTransaction):
			i.logger.Warnw("webhook for unknown transaction", "transaction_id", event.TransactionID)
		case errors.Is(err, apperr.ErrValidation):
			i.logger.Warnw("webhook event not applied", "transaction_id", event.TransactionID, "reason", err.Error())
		default:
			i.logger.Errorw("apply payment event", "transaction_id", event.TransactionID, "err", err)
		}
		return err
	}

	i.window.Record(event.TransactionID, event.ReceivedAt)

	i.logger.Infow("payment event applied",
		"transaction_id", event.TransactionID,
		"order_id", order.ID,
		"outcome", event.Outcome,
		"status", order.Status)

	return nil
}
