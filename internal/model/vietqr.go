package model

import "time"

// Wire types for the VietQR quicklink API.

type QRGenerateRequest struct {
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
	AcqID       string `json:"acqId"` // bank BIN
	Amount      int64  `json:"amount"`
	AddInfo     string `json:"addInfo"`
	Format      string `json:"format"`
}

type QRGenerateData struct {
	QRCode        string `json:"qrCode"`
	QRDataURL     string `json:"qrDataURL"`
	TransactionID string `json:"transactionId"`
}

type QRGenerateResult struct {
	Code string         `json:"code"` // "00" on success
	Desc string         `json:"desc"`
	Data QRGenerateData `json:"data"`
}

// PaymentEvent is an inbound provider notification. It lives only for the
// duration of one webhook delivery; nothing persists it beyond the dedup
// window's transaction-id record.
type PaymentEvent struct {
	TransactionID  string    `json:"transaction_id"`
	OrderReference string    `json:"order_reference"`
	Outcome        string    `json:"outcome"` // success, failure
	Amount         int64     `json:"amount"`
	ReceivedAt     time.Time `json:"-"`
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
