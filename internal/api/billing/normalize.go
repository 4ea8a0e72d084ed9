package billing

import (
	"time"

	"rental-app/internal/infra/gateway"
)

// InvoiceDTO is the presentation shape for a billing record; it is never
// persisted.
type InvoiceDTO struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Created     string  `json:"created"`
	Description string  `json:"description"`
	PDFURL      string  `json:"pdfUrl"`
}

type EventDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	EventType   string `json:"eventType"`
	Description string `json:"description"`
	Created     string `json:"created"`
}

func normalizeInvoice(in gateway.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:          in.ID,
		Amount:      float64(in.AmountCents) / 100.0,
		Created:     in.Created.UTC().Format(time.RFC3339),
		Description: in.Description,
		PDFURL:      in.PDFURL,
	}
}
