package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PayPal implements Provider against the PayPal Orders v2 REST API.
// A create maps to POST /v2/checkout/orders with intent CAPTURE, a
// capture to POST /v2/checkout/orders/{id}/capture.  OAuth client
// tokens are cached until shortly before expiry.
type PayPal struct {
	baseURL  string
	clientID string
	secret   string
	http     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExp    time.Time
}

// NewPayPal returns a client for the given API base (sandbox or live).
func NewPayPal(baseURL, clientID, secret string) *PayPal {
	return &PayPal{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
		http:     &http.Client{Timeout: 20 * time.Second},
	}
}

func (p *PayPal) Name() string { return "paypal" }

// token returns a valid OAuth access token, refreshing when needed.
func (p *PayPal) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessToken != "" && time.Now().Before(p.tokenExp) {
		return p.accessToken, nil
	}
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal: token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal: token request: status %d", resp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("paypal: token decode: %w", err)
	}
	p.accessToken = body.AccessToken
	// Refresh a minute early so in-flight requests never race expiry.
	p.tokenExp = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	return p.accessToken, nil
}

// CreateTransaction opens an order for the listing price.  The
// returned Ref is the PayPal order id.
func (p *PayPal) CreateTransaction(ctx context.Context, r CreateRequest) (*Transaction, error) {
	type amount struct {
		CurrencyCode string `json:"currency_code"`
		Value        string `json:"value"`
	}
	type payee struct {
		EmailAddress string `json:"email_address,omitempty"`
	}
	type purchaseUnit struct {
		Amount      amount `json:"amount"`
		Payee       *payee `json:"payee,omitempty"`
		Description string `json:"description,omitempty"`
	}
	pu := purchaseUnit{
		Amount:      amount{CurrencyCode: r.Currency, Value: formatAmount(r.AmountCents)},
		Description: r.Description,
	}
	if r.SellerPayout != "" {
		pu.Payee = &payee{EmailAddress: r.SellerPayout}
	}
	payload := map[string]interface{}{
		"intent":         "CAPTURE",
		"purchase_units": []purchaseUnit{pu},
	}
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := p.post(ctx, "/v2/checkout/orders", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("paypal: order response missing id")
	}
	return &Transaction{Ref: out.ID, Status: out.Status}, nil
}

// CaptureTransaction captures a previously created (and
// buyer-approved) order.  A non-COMPLETED result is a decline.
func (p *PayPal) CaptureTransaction(ctx context.Context, ref string) (*Receipt, error) {
	var out struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					Amount struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := p.post(ctx, "/v2/checkout/orders/"+url.PathEscape(ref)+"/capture", map[string]interface{}{}, &out); err != nil {
		return nil, err
	}
	if out.Status != "COMPLETED" {
		return nil, fmt.Errorf("paypal: capture of %s ended in status %s: %w", ref, out.Status, ErrDeclined)
	}
	rec := &Receipt{Ref: ref, CapturedAt: time.Now().UTC()}
	if len(out.PurchaseUnits) > 0 && len(out.PurchaseUnits[0].Payments.Captures) > 0 {
		c := out.PurchaseUnits[0].Payments.Captures[0]
		rec.Currency = c.Amount.CurrencyCode
		rec.AmountCents = parseAmount(c.Amount.Value)
	}
	return rec, nil
}

func (p *PayPal) post(ctx context.Context, path string, payload, out interface{}) error {
	tok, err := p.token(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("paypal: %s: %w", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("paypal: %s: read body: %w", path, err)
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return fmt.Errorf("paypal: %s: %s: %w", path, strings.TrimSpace(string(raw)), ErrDeclined)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal: %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("paypal: %s: decode: %w", path, err)
		}
	}
	return nil
}

// parseAmount converts a "50.00" style decimal into cents, tolerating
// a missing fraction.
func parseAmount(s string) int64 {
	parts := strings.SplitN(s, ".", 2)
	whole, _ := strconv.ParseInt(parts[0], 10, 64)
	cents := whole * 100
	if len(parts) == 2 {
		frac := parts[1]
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, _ := strconv.ParseInt(frac, 10, 64)
		cents += f
	}
	return cents
}
