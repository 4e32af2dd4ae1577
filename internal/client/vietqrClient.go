package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"vietqr-order-service/internal/apperr"
	"vietqr-order-service/internal/config"
	"vietqr-order-service/internal/model"
)

const providerCodeOK = "00"

type VietQRClient interface {
	RequestQR(ctx context.Context, order *model.Order) (*QRResponse, error)
}

type QRResponse struct {
	QRImageRef    string
	TransactionID string
}

type vietqrClientImpl struct {
	httpClient  *http.Client
	baseApiURL  string
	clientID    string
	apiKey      string
	accountNo   string
	accountName string
	acqID       string
}

func NewVietQRClient(vietqrCfg *config.VietQR) VietQRClient {
	timeout := vietqrCfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &vietqrClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseApiURL:  vietqrCfg.BaseApiURL,
		clientID:    vietqrCfg.ClientID,
		apiKey:      vietqrCfg.APIKey,
		accountNo:   vietqrCfg.AccountNo,
		accountName: vietqrCfg.AccountName,
		acqID:       vietqrCfg.AcqID,
	}
}

// RequestQR performs one logical QR-generation attempt. It never retries:
// every successful call yields a fresh provider transaction id, and only the
// caller knows whether the order may still accept one.
func (c *vietqrClientImpl) RequestQR(ctx context.Context, order *model.Order) (*QRResponse, error) {
	payload := model.QRGenerateRequest{
		AccountNo:   c.accountNo,
		AccountName: c.accountName,
		AcqID:       c.acqID,
		Amount:      order.TotalAmount,
		AddInfo:     "order " + order.ID,
		Format:      "text",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal qr payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/generate",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: qr generate request: %v", apperr.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: provider status %d: %s", apperr.ErrGatewayUnavailable, resp.StatusCode, string(b))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: provider status %d: %s", apperr.ErrGatewayRejected, resp.StatusCode, string(b))
	}

	var result model.QRGenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode provider response: %v", apperr.ErrGatewayUnavailable, err)
	}

	if result.Code != providerCodeOK {
		return nil, fmt.Errorf("%w: provider code %s: %s", apperr.ErrGatewayRejected, result.Code, result.Desc)
	}
	if result.Data.TransactionID == "" {
		return nil, fmt.Errorf("%w: provider response missing transaction id", apperr.ErrGatewayRejected)
	}

	qrRef := result.Data.QRDataURL
	if qrRef == "" {
		qrRef = result.Data.QRCode
	}

	return &QRResponse{
		QRImageRef:    qrRef,
		TransactionID: result.Data.TransactionID,
	}, nil
}
