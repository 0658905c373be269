package partner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	dompartner "github.com/arteon/exchange/internal/domain/partner"
	dompayment "github.com/arteon/exchange/internal/domain/payment"
)

// Client talks to the partner-data service. Payloads arrive with optional
// keys; they are decoded into explicit nullable fields and validated here,
// at the boundary, so the rest of the system never sees loose maps.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type partnerPayload struct {
	ID                      string                   `json:"id"`
	EffectiveCommissionRate *float64                 `json:"effective_commission_rate"`
	MerchantAccounts        []merchantAccountPayload `json:"merchant_accounts"`
}

type merchantAccountPayload struct {
	ExternalID   string `json:"external_id"`
	CurrencyCode string `json:"currency_code"`
}

func (c *Client) GetPartner(ctx context.Context, partnerID string) (*dompartner.Partner, error) {
	var payload partnerPayload
	if err := c.getJSON(ctx, fmt.Sprintf("/partner/%s/all", url.PathEscape(partnerID)), &payload); err != nil {
		return nil, err
	}

	accounts := make([]dompayment.MerchantAccount, 0, len(payload.MerchantAccounts))
	for _, ma := range payload.MerchantAccounts {
		if ma.ExternalID == "" {
			continue
		}
		accounts = append(accounts, dompayment.MerchantAccount{
			ExternalID:   ma.ExternalID,
			CurrencyCode: ma.CurrencyCode,
		})
	}

	return &dompartner.Partner{
		ID:                      partnerID,
		EffectiveCommissionRate: payload.EffectiveCommissionRate,
		MerchantAccounts:        accounts,
	}, nil
}

type creditCardPayload struct {
	ID              string                  `json:"id"`
	ExternalID      string                  `json:"external_id"`
	CustomerAccount *customerAccountPayload `json:"customer_account"`
	DeactivatedAt   *time.Time              `json:"deactivated_at"`
}

type customerAccountPayload struct {
	ExternalID string `json:"external_id"`
}

func (c *Client) GetCreditCard(ctx context.Context, creditCardID string) (*dompayment.CreditCard, error) {
	var payload creditCardPayload
	if err := c.getJSON(ctx, fmt.Sprintf("/credit_card/%s", url.PathEscape(creditCardID)), &payload); err != nil {
		return nil, err
	}

	card := &dompayment.CreditCard{
		ID:            creditCardID,
		ExternalID:    payload.ExternalID,
		DeactivatedAt: payload.DeactivatedAt,
	}
	if payload.CustomerAccount != nil {
		card.CustomerAccount = &dompayment.CustomerAccount{ExternalID: payload.CustomerAccount.ExternalID}
	}
	return card, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("partner api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("partner api: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("partner api: %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("partner api: %s: decode: %w", path, err)
	}
	return nil
}
