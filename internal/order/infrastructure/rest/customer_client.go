// Package rest holds the HTTP clients for the external collaborators: the
// customer directory and the payment processor. Both speak JSON and are
// called synchronously from the order workflow.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/orderflow-io/orderflow/internal/order/domain"
)

type CustomerClient struct {
	log     *slog.Logger
	baseURL string
	client  *http.Client
}

func NewCustomerClient(log *slog.Logger, baseURL string, timeout time.Duration) *CustomerClient {
	return &CustomerClient{
		log:     log,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *CustomerClient) FindByID(ctx context.Context, id string) (domain.CustomerSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/customers/"+id, nil)
	if err != nil {
		return domain.CustomerSnapshot{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.CustomerSnapshot{}, fmt.Errorf("customer directory: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.CustomerSnapshot{}, domain.ErrCustomerNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.CustomerSnapshot{}, fmt.Errorf("customer directory returned %d", resp.StatusCode)
	}

	var snap domain.CustomerSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return domain.CustomerSnapshot{}, fmt.Errorf("decode customer response: %w", err)
	}
	return snap, nil
}
