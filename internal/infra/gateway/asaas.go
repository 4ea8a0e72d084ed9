package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-app/config"
	"rental-app/internal/domain/billing"
)

const asaasDefaultBaseURL = "https://api.asaas.com/v3"

// ASAASAdapter implements Provider against the ASAAS REST API. Every call is
// a raw authenticated request (access_token header) through the shared
// request helper; there is no official Go SDK.
type ASAASAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewASAASAdapter() (*ASAASAdapter, error) {
	if config.ASAAS_API_KEY == "" {
		return nil, &ConfigError{Key: "ASAAS_API_KEY"}
	}

	base := config.ASAAS_BASE_URL
	if base == "" {
		base = asaasDefaultBaseURL
	}

	return &ASAASAdapter{
		apiKey:  config.ASAAS_API_KEY,
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (a *ASAASAdapter) Name() string {
	return billing.GatewayASAAS
}

func (a *ASAASAdapter) CreateCustomer(p CustomerParams) (string, error) {
	payload := map[string]interface{}{
		"name":  p.Name,
		"email": p.Email,
	}
	if p.TaxID != "" {
		payload["cpfCnpj"] = p.TaxID
	}
	// ASAAS has no free-form metadata; the caller's own user id goes into
	// externalReference instead.
	if ref := p.Metadata["user_id"]; ref != "" {
		payload["externalReference"] = ref
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := a.request(http.MethodPost, "/customers", payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (a *ASAASAdapter) CreateCheckout(p CheckoutParams) (*CheckoutSession, error) {
	plan := asaasPlanForPrice(p.PriceID)

	payload := map[string]interface{}{
		"name":              plan.Name,
		"description":       fmt.Sprintf("Assinatura %s", plan.Name),
		"billingType":       "UNDEFINED",
		"chargeType":        "RECURRENT",
		"value":             float64(plan.AmountCents) / 100.0,
		"subscriptionCycle": plan.Cycle,
	}
	if p.SuccessURL != "" {
		payload["callback"] = map[string]interface{}{
			"successUrl":   p.SuccessURL,
			"autoRedirect": true,
		}
	}
	if ref := p.Metadata["user_id"]; ref != "" {
		payload["externalReference"] = ref
	}

	var resp struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := a.request(http.MethodPost, "/paymentLinks", payload, &resp); err != nil {
		return nil, &CheckoutError{Reason: err.Error()}
	}

	return &CheckoutSession{
		URL:       resp.URL,
		SessionID: resp.ID,
		Gateway:   billing.GatewayASAAS,
	}, nil
}

func (a *ASAASAdapter) CancelSubscription(subscriptionID string) error {
	err := a.request(http.MethodDelete, "/subscriptions/"+url.PathEscape(subscriptionID), nil, nil)
	if err != nil {
		var ge *GatewayError
		// Already gone counts as canceled.
		if errors.As(err, &ge) && ge.StatusCode == http.StatusNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (a *ASAASAdapter) GetSubscriptionStatus(subscriptionID string) (*SubscriptionSnapshot, error) {
	var resp struct {
		ID          string  `json:"id"`
		Status      string  `json:"status"`
		Value       float64 `json:"value"`
		Cycle       string  `json:"cycle"`
		Description string  `json:"description"`
		NextDueDate string  `json:"nextDueDate"`
	}
	if err := a.request(http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionID), nil, &resp); err != nil {
		return nil, err
	}

	snap := &SubscriptionSnapshot{
		Gateway:     billing.GatewayASAAS,
		Status:      resp.Status,
		AmountCents: int64(math.Round(resp.Value * 100)),
		Cycle:       resp.Cycle,
		PlanName:    resp.Description,
	}
	if t, err := time.Parse("2006-01-02", resp.NextDueDate); err == nil {
		snap.CurrentPeriodEnd = t
	}
	return snap, nil
}

func (a *ASAASAdapter) GetInvoices(customerID string) ([]Invoice, error) {
	path := fmt.Sprintf("/payments?customer=%s&limit=%d", url.QueryEscape(customerID), invoicePageSize)

	var resp struct {
		Data []struct {
			ID          string  `json:"id"`
			Value       float64 `json:"value"`
			DateCreated string  `json:"dateCreated"`
			Description string  `json:"description"`
			InvoiceURL  string  `json:"invoiceUrl"`
			Status      string  `json:"status"`
		} `json:"data"`
	}
	if err := a.request(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Invoice, 0, len(resp.Data))
	for _, p := range resp.Data {
		created, _ := time.Parse("2006-01-02", p.DateCreated)
		out = append(out, Invoice{
			ID:          p.ID,
			AmountCents: int64(math.Round(p.Value * 100)),
			Created:     created,
			Description: p.Description,
			PDFURL:      p.InvoiceURL,
			Status:      p.Status,
		})
	}
	return out, nil
}

// request performs one authenticated call. On any non-2xx response the
// provider's own error description is extracted from its JSON error envelope
// and wrapped in a GatewayError.
func (a *ASAASAdapter) request(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &GatewayError{Gateway: billing.GatewayASAAS, Message: err.Error()}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, a.baseURL+path, reader)
	if err != nil {
		return &GatewayError{Gateway: billing.GatewayASAAS, Message: err.Error()}
	}
	req.Header.Set("access_token", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return &GatewayError{Gateway: billing.GatewayASAAS, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Gateway: billing.GatewayASAAS, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{
			Gateway:    billing.GatewayASAAS,
			StatusCode: resp.StatusCode,
			Message:    asaasErrorDescription(raw, resp.StatusCode),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &GatewayError{Gateway: billing.GatewayASAAS, Message: "unexpected response: " + err.Error()}
		}
	}
	return nil
}

func asaasErrorDescription(raw []byte, status int) string {
	var envelope struct {
		Errors []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Errors) > 0 {
		return envelope.Errors[0].Description
	}
	return fmt.Sprintf("request failed with status %d", status)
}
