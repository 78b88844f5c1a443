package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Stripe implements Provider against the PaymentIntents API.  Intents
// are created with manual capture so that the two-step
// create-then-capture ordering of the purchase orchestrator maps
// directly onto the processor.
type Stripe struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewStripe returns a client authenticated with the given secret key.
func NewStripe(baseURL, secretKey string) *Stripe {
	return &Stripe{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *Stripe) Name() string { return "stripe" }

type stripeIntent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Error    *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// CreateTransaction opens a manual-capture payment intent for the
// listing price.  The returned Ref is the intent id.
func (s *Stripe) CreateTransaction(ctx context.Context, r CreateRequest) (*Transaction, error) {
	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", r.AmountCents))
	form.Set("currency", strings.ToLower(r.Currency))
	form.Set("capture_method", "manual")
	if r.Description != "" {
		form.Set("description", r.Description)
	}
	if r.SellerPayout != "" {
		form.Set("transfer_data[destination]", r.SellerPayout)
	}
	out, err := s.post(ctx, "/v1/payment_intents", form)
	if err != nil {
		return nil, err
	}
	return &Transaction{Ref: out.ID, Status: out.Status}, nil
}

// CaptureTransaction captures a confirmed intent.  Stripe reports the
// final state in the intent status; anything but "succeeded" after a
// capture call is treated as a decline.
func (s *Stripe) CaptureTransaction(ctx context.Context, ref string) (*Receipt, error) {
	out, err := s.post(ctx, "/v1/payment_intents/"+url.PathEscape(ref)+"/capture", url.Values{})
	if err != nil {
		return nil, err
	}
	if out.Status != "succeeded" {
		return nil, fmt.Errorf("stripe: capture of %s ended in status %s: %w", ref, out.Status, ErrDeclined)
	}
	return &Receipt{
		Ref:         ref,
		AmountCents: out.Amount,
		Currency:    strings.ToUpper(out.Currency),
		CapturedAt:  time.Now().UTC(),
	}, nil
}

func (s *Stripe) post(ctx context.Context, path string, form url.Values) (*stripeIntent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe: %s: %w", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stripe: %s: read body: %w", path, err)
	}
	var out stripeIntent
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("stripe: %s: decode: %w", path, err)
	}
	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusForbidden ||
		(resp.StatusCode == http.StatusBadRequest && out.Error != nil && strings.HasPrefix(out.Error.Code, "card_")) {
		msg := ""
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("stripe: %s: %s: %w", path, msg, ErrDeclined)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe: %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return &out, nil
}
