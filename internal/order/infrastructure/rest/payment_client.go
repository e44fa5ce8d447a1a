package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/orderflow-io/orderflow/internal/order/application"
)

type PaymentClient struct {
	log     *slog.Logger
	baseURL string
	client  *http.Client
}

func NewPaymentClient(log *slog.Logger, baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		log:     log,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Charge posts the payment request and returns the processor's payment id.
// Any non-2xx result is an error; the caller decides what that means for
// the already-committed order.
func (c *PaymentClient) Charge(ctx context.Context, payment application.PaymentRequest) (string, error) {
	body, err := json.Marshal(payment)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment processor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("payment processor returned %d", resp.StatusCode)
	}
	var out struct {
		PaymentID string `json:"paymentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode payment response: %w", err)
	}
	return out.PaymentID, nil
}
