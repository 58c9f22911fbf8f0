package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/pkg/config"
	"github.com/eleqt/eleqt-rides/pkg/logger"
)

// Client talks to a Razorpay-compatible orders API over REST with basic
// auth. The key secret doubles as the HMAC key for checkout signatures.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

var _ Gateway = (*Client)(nil)

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type gatewayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, p CreateOrderParams) (*Order, error) {
	receipt := p.Receipt
	if receipt == "" {
		receipt = "rcpt_" + uuid.NewString()
	}
	body, err := json.Marshal(createOrderRequest{
		Amount:   p.Amount,
		Currency: p.Currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"user_id":    strconv.FormatInt(p.UserID, 10),
			"booking_id": strconv.FormatInt(p.BookingID, 10),
		},
	})
	if err != nil {
		return nil, &domain.GatewayError{Op: "create order", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.GatewayError{Op: "create order", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Op: "create order", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.GatewayError{Op: "create order", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayErrorBody
		desc := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &gwErr) == nil && gwErr.Error.Description != "" {
			desc = gwErr.Error.Description
		}
		logger.ErrorContext(ctx, "payment order creation rejected",
			"status", resp.StatusCode, "description", desc)
		return nil, &domain.GatewayError{Op: "create order", Err: fmt.Errorf("%s (status %d)", desc, resp.StatusCode)}
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, &domain.GatewayError{Op: "create order", Err: err}
	}
	if order.ID == "" {
		return nil, &domain.GatewayError{Op: "create order", Err: fmt.Errorf("gateway returned order without id")}
	}
	return &order, nil
}

// VerifySignature checks the checkout signature the gateway hands the
// client: HMAC-SHA256 over "orderID|paymentID" keyed with the secret,
// hex-encoded.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
