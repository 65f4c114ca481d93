package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voltbus/curtaild/core/curtail"
	"github.com/voltbus/curtaild/core/logger"
	"github.com/voltbus/curtaild/core/model"
)

// Config defines the connection parameters for the charger hub.
type Config struct {
	BaseURL        string `json:"base_url"`
	APIToken       string `json:"api_token"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("hub base_url is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("hub api_token is required")
	}
	return nil
}

// Client talks to the charger hub's data and command endpoints. Every request
// carries a bearer token. It implements curtail.SessionProvider and
// curtail.CommandSender.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	log     logger.Logger
}

// NewClient creates a hub client from the configuration.
func NewClient(cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	return &Client{
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		log:     log,
	}
}

// do sends one request and decodes the JSON response into out. The hub
// expects JSON bodies on its GET data endpoints, so body is marshalled
// regardless of method.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: unexpected status code %d, body: %s", method, path, resp.StatusCode, b)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// Chargers lists every charger known to the hub.
func (c *Client) Chargers(ctx context.Context) ([]model.Charger, error) {
	var out []model.Charger
	if err := c.do(ctx, http.MethodGet, "/data/chargers", nil, &out); err != nil {
		return nil, err
	}
	c.log.Debugw("chargers retrieved", map[string]any{"count": len(out)})
	return out, nil
}

type meterValueQuery struct {
	ChargerID   string `json:"charger_id"`
	Descending  bool   `json:"descending"`
	Limit       int    `json:"limit"`
	ConnectorID int    `json:"connector_id"`
}

// LatestMeterValue returns the most recent meter value for one connector.
// An empty result list maps to curtail.ErrNoData.
func (c *Client) LatestMeterValue(ctx context.Context, chargerID string, connectorID int) (model.MeterValue, error) {
	q := meterValueQuery{ChargerID: chargerID, Descending: true, Limit: 1, ConnectorID: connectorID}
	var out []model.MeterValue
	if err := c.do(ctx, http.MethodGet, "/data/meter-values", q, &out); err != nil {
		return model.MeterValue{}, err
	}
	if len(out) == 0 {
		return model.MeterValue{}, fmt.Errorf("meter values %s-%d: %w", chargerID, connectorID, curtail.ErrNoData)
	}
	c.log.Debugw("meter value retrieved", map[string]any{
		"charger_id":   chargerID,
		"connector_id": connectorID,
		"record":       out[0],
	})
	return out[0], nil
}

type transactionQuery struct {
	Limit       int `json:"limit"`
	ConnectorID int `json:"connector_id"`
}

// LatestTransaction returns the most recent transaction for one connector.
// An empty result list maps to curtail.ErrNoData.
func (c *Client) LatestTransaction(ctx context.Context, chargerID string, connectorID int) (model.Transaction, error) {
	q := transactionQuery{Limit: 1, ConnectorID: connectorID}
	var out []model.Transaction
	if err := c.do(ctx, http.MethodGet, "/data/"+chargerID+"/transactions", q, &out); err != nil {
		return model.Transaction{}, err
	}
	if len(out) == 0 {
		return model.Transaction{}, fmt.Errorf("transactions %s-%d: %w", chargerID, connectorID, curtail.ErrNoData)
	}
	c.log.Debugw("transaction retrieved", map[string]any{
		"charger_id":   chargerID,
		"connector_id": connectorID,
		"record":       out[0],
	})
	return out[0], nil
}

// SetChargeProfile submits a charge profile command for one charger. The hub
// handles the actual charger communication; the response body is ignored.
func (c *Client) SetChargeProfile(ctx context.Context, chargerID string, profile model.ChargeProfile) error {
	return c.do(ctx, http.MethodPost, "/command/"+chargerID+"/set-charge-profile", profile, nil)
}
