package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"commission-api/internal/models"
	"commission-api/pkg/logging"

	"github.com/shopspring/decimal"
)

const signatureHeader = "X-Commission-Signature"

// WebhookNotifier tells a downstream payroll system about new commission rows
type WebhookNotifier struct {
	httpClient  *http.Client
	callbackURL string
	secret      string
	retryDelays []time.Duration
}

// NewWebhookNotifier posts to callbackURL, signing with secret when set.
// An empty callbackURL disables notifications.
func NewWebhookNotifier(callbackURL, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		callbackURL: callbackURL,
		secret:      secret,
		retryDelays: []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second},
	}
}

// WebhookCommission is one commission row in a webhook payload
type WebhookCommission struct {
	UUID              string          `json:"uuid"`
	EmployeeID        string          `json:"employee_id"`
	ItemType          models.ItemType `json:"item_type"`
	ItemID            string          `json:"item_id"`
	PerformanceAmount decimal.Decimal `json:"performance_amount"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
}

// WebhookPayload is the body of a commission.recorded notification. BatchID
// names the attribution run the rows came from.
type WebhookPayload struct {
	Event       string              `json:"event"`
	BatchID     string              `json:"batch_id"`
	Commissions []WebhookCommission `json:"commissions"`
	Timestamp   string              `json:"timestamp"`
}

// NotifyRecorded sends records to the callback, retrying on failure.
// Callers run it in its own goroutine.
func (wn *WebhookNotifier) NotifyRecorded(ctx context.Context, records []models.EmployeeCommission) {
	if wn.callbackURL == "" || len(records) == 0 {
		return
	}

	payload := WebhookPayload{
		Event:       "commission.recorded",
		BatchID:     records[0].BatchID.String(),
		Commissions: make([]WebhookCommission, len(records)),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	for i, rec := range records {
		payload.Commissions[i] = WebhookCommission{
			UUID:              rec.UUID.String(),
			EmployeeID:        rec.EmployeeID,
			ItemType:          rec.ItemType,
			ItemID:            rec.ItemID,
			PerformanceAmount: rec.PerformanceAmount,
			CommissionAmount:  rec.CommissionAmount,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logging.Errorf("Commission webhook payload encoding failed - batch: %s, error: %v", payload.BatchID, err)
		return
	}
	wn.deliver(ctx, payload.BatchID, body)
}

// deliver posts body until the callback accepts it, the attempts run out or
// ctx is done
func (wn *WebhookNotifier) deliver(ctx context.Context, batchID string, body []byte) {
	signature := ""
	if wn.secret != "" {
		signature = wn.sign(body)
	}

	for attempt := 0; ; attempt++ {
		err := wn.post(ctx, body, signature)
		if err == nil {
			logging.Infof("Commission webhook delivered - batch: %s, attempt: %d", batchID, attempt+1)
			return
		}
		if attempt == len(wn.retryDelays) {
			logging.Errorf("Commission webhook abandoned after %d attempts - url: %s, batch: %s, error: %v",
				attempt+1, wn.callbackURL, batchID, err)
			return
		}

		logging.Warnf("Commission webhook attempt %d failed - batch: %s, error: %v", attempt+1, batchID, err)
		select {
		case <-time.After(wn.retryDelays[attempt]):
		case <-ctx.Done():
			return
		}
	}
}

func (wn *WebhookNotifier) post(ctx context.Context, body []byte, signature string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Commission-Webhook/1.0")
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}

	resp, err := wn.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("callback answered %s", resp.Status)
	}
	return nil
}

// sign is the hex HMAC-SHA256 of body under the shared secret
func (wn *WebhookNotifier) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(wn.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
