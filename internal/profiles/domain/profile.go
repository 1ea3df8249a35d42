package profiles

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profiles: profile not found")
	ErrProfileExists   = errors.New("profiles: profile already exists")
	ErrInvalidProfile  = errors.New("profiles: invalid profile")
	ErrAccountNotFound = errors.New("profiles: account not found")
	ErrInvalidAccount  = errors.New("profiles: invalid account")
)

// Profile is the issuer identity printed on invoices.
type Profile struct {
	UserID         string    `json:"-"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	BusinessName   string    `json:"businessName"`
	Address        string    `json:"address"`
	ProfilePicture string    `json:"profilePicture"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DisplayName prefers the business name.
func (p Profile) DisplayName() string {
	if strings.TrimSpace(p.BusinessName) != "" {
		return p.BusinessName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfileInput is the create payload.
type ProfileInput struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	BusinessName string `json:"businessName"`
	Address      string `json:"address"`
}

// Validate requires first and last name.
func (in ProfileInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return errors.Join(ErrInvalidProfile, errors.New("firstName and lastName are required"))
	}
	return nil
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	BusinessName *string `json:"businessName"`
	Address      *string `json:"address"`
}

// Apply merges the update into p.
func (u ProfileUpdate) Apply(p *Profile) error {
	next := *p
	if u.FirstName != nil {
		next.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		next.LastName = *u.LastName
	}
	if u.BusinessName != nil {
		next.BusinessName = *u.BusinessName
	}
	if u.Address != nil {
		next.Address = *u.Address
	}
	in := ProfileInput{FirstName: next.FirstName, LastName: next.LastName}
	if err := in.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}
