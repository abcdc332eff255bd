package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketplace-settlement/internal/config"
)

// ErrTransferRejected means the destination account cannot receive funds.
var ErrTransferRejected = errors.New("transfer rejected by processor")

// ErrBadSignature means a webhook payload failed signature verification.
var ErrBadSignature = errors.New("invalid webhook signature")

// webhookTolerance bounds how stale a signed webhook timestamp may be.
const webhookTolerance = 5 * time.Minute

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type AccountStatus struct {
	ID               string `json:"id"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

// StripeClient is the settlement core's boundary to the payment processor.
type StripeClient interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	CreateTransfer(ctx context.Context, amount int64, currency, destination string, metadata map[string]string) (string, error)
	RetrieveAccount(ctx context.Context, accountID string) (*AccountStatus, error)
	VerifyWebhookSignature(payload []byte, sigHeader string) error
}

type stripeClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	secretKey     string
	webhookSecret string
	now           func() time.Time
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    stripeCfg.BaseApiURL,
		secretKey:     stripeCfg.SecretKey,
		webhookSecret: stripeCfg.WebhookSecret,
		now:           time.Now,
	}
}

func (c *stripeClientImpl) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}

	return &intent, nil
}

func (c *stripeClientImpl) RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil, &intent); err != nil {
		return nil, fmt.Errorf("stripe retrieve payment intent: %w", err)
	}

	return &intent, nil
}

func (c *stripeClientImpl) CreateTransfer(ctx context.Context, amount int64, currency, destination string, metadata map[string]string) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("destination", destination)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var transfer struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/transfers", form, &transfer)
	if err != nil {
		var apiErr *stripeAPIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return "", fmt.Errorf("%w: %s", ErrTransferRejected, apiErr.Message)
		}
		return "", fmt.Errorf("stripe create transfer: %w", err)
	}

	return transfer.ID, nil
}

func (c *stripeClientImpl) RetrieveAccount(ctx context.Context, accountID string) (*AccountStatus, error) {
	var account AccountStatus
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID, nil, &account); err != nil {
		return nil, fmt.Errorf("stripe retrieve account: %w", err)
	}

	return &account, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header scheme:
// "t=<unix>,v1=<hex hmac-sha256(secret, t + '.' + payload)>".
func (c *stripeClientImpl) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return ErrBadSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	age := c.now().Sub(time.Unix(ts, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrBadSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}

	return ErrBadSignature
}

type stripeAPIError struct {
	StatusCode int
	Message    string
}

func (e *stripeAPIError) Error() string {
	return fmt.Sprintf("stripe error %d: %s", e.StatusCode, e.Message)
}

func (c *stripeClientImpl) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		var apiResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		message := string(b)
		if err := json.Unmarshal(b, &apiResp); err == nil && apiResp.Error.Message != "" {
			message = apiResp.Error.Message
		}
		return &stripeAPIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode stripe response: %w", err)
		}
	}

	return nil
}
