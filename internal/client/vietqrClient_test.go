package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"vietqr-order-service/internal/apperr"
	"vietqr-order-service/internal/config"
	"vietqr-order-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) VietQRClient {
	return NewVietQRClient(&config.VietQR{
		BaseApiURL:     baseURL,
		ClientID:       "client-id",
		APIKey:         "api-key",
		AccountNo:      "0011001234567",
		AccountName:    "DEMO SHOP",
		AcqID:          "970436",
		RequestTimeout: 2 * time.Second,
	})
}

func qrOrder() *model.Order {
	return &model.Order{
		ID:            "order-1",
		Status:        model.StatusPending,
		PaymentMethod: model.MethodQRTransfer,
		TotalAmount:   150000,
	}
}

func TestRequestQRSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/generate", r.URL.Path)
		assert.Equal(t, "client-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "api-key", r.Header.Get("x-api-key"))

		var req model.QRGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(150000), req.Amount)
		assert.Equal(t, "0011001234567", req.AccountNo)
		assert.Equal(t, "970436", req.AcqID)
		assert.Contains(t, req.AddInfo, "order-1")

		json.NewEncoder(w).Encode(model.QRGenerateResult{
			Code: "00",
			Desc: "Gen VietQR successful!",
			Data: model.QRGenerateData{
				QRDataURL:     "data:image/png;base64,abc",
				TransactionID: "txn-1",
			},
		})
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).RequestQR(context.Background(), qrOrder())
	require.NoError(t, err)
	assert.Equal(t, "txn-1", resp.TransactionID)
	assert.Equal(t, "data:image/png;base64,abc", resp.QRImageRef)
}

func TestRequestQRRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.QRGenerateResult{
			Code: "12",
			Desc: "Invalid account number",
		})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RequestQR(context.Background(), qrOrder())
	assert.ErrorIs(t, err, apperr.ErrGatewayRejected)
	assert.Contains(t, err.Error(), "Invalid account number")
}

func TestRequestQRRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RequestQR(context.Background(), qrOrder())
	assert.ErrorIs(t, err, apperr.ErrGatewayRejected)
}

func TestRequestQRUnavailableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RequestQR(context.Background(), qrOrder())
	assert.ErrorIs(t, err, apperr.ErrGatewayUnavailable)
}

func TestRequestQRUnavailableNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := testClient(srv.URL).RequestQR(context.Background(), qrOrder())
	assert.ErrorIs(t, err, apperr.ErrGatewayUnavailable)
}

func TestRequestQRMissingTransactionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.QRGenerateResult{
			Code: "00",
			Data: model.QRGenerateData{QRDataURL: "data:image/png;base64,abc"},
		})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RequestQR(context.Background(), qrOrder())
	assert.ErrorIs(t, err, apperr.ErrGatewayRejected)
}
