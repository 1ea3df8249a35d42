package invoicing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CreationRequest is the POST /invoices payload.
type CreationRequest struct {
	ClientName       string         `json:"clientName"`
	ClientEmail      string         `json:"clientEmail"`
	DueDate          Date           `json:"dueDate"`
	BillingAddress   string         `json:"billingAddress"`
	ExtraInformation string         `json:"extraInformation"`
	Items            []CreationItem `json:"items"`
}

// CreationItem is one item of a CreationRequest.
type CreationItem struct {
	Title     string          `json:"title"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ParseCreationRequest decodes a wire payload.
func ParseCreationRequest(data []byte) (CreationRequest, error) {
	var req CreationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return CreationRequest{}, fmt.Errorf("decode creation request: %w", err)
	}
	return req, nil
}

// Validate applies the draft submission rules to a received payload.
func (r CreationRequest) Validate() error {
	verr := &ValidationError{}
	validateHeader(verr, r.ClientName, r.ClientEmail, r.DueDate, r.BillingAddress)
	items := make([]LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, NewLineItem(item.Title, item.Quantity, item.UnitPrice))
	}
	validateItems(verr, items)
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
