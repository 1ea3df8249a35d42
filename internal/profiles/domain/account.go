package profiles

import (
	"errors"
	"strings"
	"time"
)

// Account is a payout destination listed on invoices.
type Account struct {
	ID            string    `json:"id"`
	UserID        string    `json:"-"`
	AccountName   string    `json:"accountName"`
	AccountNumber string    `json:"accountNumber"`
	BankName      string    `json:"bankName"`
	PayPalID      string    `json:"paypalId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AccountInput is the create payload.
type AccountInput struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	PayPalID      string `json:"paypalId"`
}

// Validate requires name, number and bank.
func (in AccountInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.AccountName) == "" {
		missing = append(missing, "accountName")
	}
	if strings.TrimSpace(in.AccountNumber) == "" {
		missing = append(missing, "accountNumber")
	}
	if strings.TrimSpace(in.BankName) == "" {
		missing = append(missing, "bankName")
	}
	if len(missing) > 0 {
		return errors.Join(ErrInvalidAccount, errors.New(strings.Join(missing, ", ")+" required"))
	}
	return nil
}
