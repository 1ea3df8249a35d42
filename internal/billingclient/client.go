// Package billingclient is the HTTP client for the invoicing API.
package billingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicing-cloud/internal/auth"
	invoicing "invoicing-cloud/internal/invoicing/domain"
	profiles "invoicing-cloud/internal/profiles/domain"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 15 * time.Second

const maxErrorBody = 4 << 10

// Session is the bearer token of a logged-in user.
type Session struct {
	Token     string `yaml:"token" json:"accessToken"`
	TokenType string `yaml:"token_type" json:"tokenType"`
	Username  string `yaml:"username" json:"-"`
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool { return s.Token != "" }

// RemoteError describes a failed API call.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error

	// mapped is set when Err is a domain error decoded from the response.
	mapped bool
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("billingclient: %s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": http %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is matches ErrRemoteFailure unless the response mapped to a domain error.
func (e *RemoteError) Is(target error) bool {
	return target == invoicing.ErrRemoteFailure && !e.mapped
}

// User is the account returned by /users endpoints.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Client calls the invoicing API. It is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	session Session
}

// NewClient constructs a client. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("billingclient: empty base url")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("billingclient: base url: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// WithSession returns a copy of c that authenticates as s.
func (c *Client) WithSession(s Session) *Client {
	next := *c
	next.session = s
	return &next
}

// Session returns the session in use.
func (c *Client) Session() Session { return c.session }

// Register creates a user account.
func (c *Client) Register(ctx context.Context, username, email, password string) (User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var out User
	err := c.doJSON(ctx, http.MethodPost, "/users/register", body, &out)
	return out, err
}

// Login exchanges credentials for a session using the password form flow.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	form := url.Values{"username": {username}, "password": {password}}
	var out Session
	err := c.do(ctx, http.MethodPost, "/users/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &out)
	if err != nil {
		return Session{}, err
	}
	out.Username = username
	return out, nil
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &out)
	return out, err
}

// CreateInvoice submits a creation request.
func (c *Client) CreateInvoice(ctx context.Context, req invoicing.CreationRequest) (invoicing.Record, error) {
	var out invoicing.Record
	err := c.doJSON(ctx, http.MethodPost, "/invoices", req, &out)
	return out, err
}

// ListInvoices returns the caller's invoices.
func (c *Client) ListInvoices(ctx context.Context) ([]invoicing.Record, error) {
	var out []invoicing.Record
	err := c.doJSON(ctx, http.MethodGet, "/invoices", nil, &out)
	return out, err
}

// GetInvoice loads one invoice.
func (c *Client) GetInvoice(ctx context.Context, id string) (invoicing.Record, error) {
	var out invoicing.Record
	err := c.doJSON(ctx, http.MethodGet, "/invoices/"+url.PathEscape(id), nil, &out)
	return out, err
}

// UpdateStatus sets an invoice status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status invoicing.Status) (invoicing.Record, error) {
	path := "/invoices/" + url.PathEscape(id) + "/status?status=" + url.QueryEscape(string(status))
	var out invoicing.Record
	err := c.doJSON(ctx, http.MethodPatch, path, nil, &out)
	return out, err
}

// RecordPayment appends a payment. A zero date lets the server use its clock.
func (c *Client) RecordPayment(ctx context.Context, id string, amount decimal.Decimal, label string, date time.Time) (invoicing.Record, error) {
	body := struct {
		Amount decimal.Decimal `json:"amount"`
		Label  string          `json:"label,omitempty"`
		Date   string          `json:"date,omitempty"`
	}{Amount: amount, Label: label}
	if !date.IsZero() {
		body.Date = date.UTC().Format(time.RFC3339)
	}
	var out invoicing.Record
	err := c.doJSON(ctx, http.MethodPost, "/invoices/"+url.PathEscape(id)+"/payments", body, &out)
	return out, err
}

// DeleteInvoice removes an invoice.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/invoices/"+url.PathEscape(id), nil, nil)
}

// Summary returns the dashboard summary.
func (c *Client) Summary(ctx context.Context) (invoicing.Summary, error) {
	var out invoicing.Summary
	err := c.doJSON(ctx, http.MethodGet, "/invoices/summary", nil, &out)
	return out, err
}

// Download fetches an invoice document; format is "pdf" or "xlsx".
func (c *Client) Download(ctx context.Context, id, format string) ([]byte, error) {
	path := "/invoices/" + url.PathEscape(id) + "/download"
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}
	return c.fetch(ctx, path)
}

// ExportInvoices fetches the spreadsheet of all invoices.
func (c *Client) ExportInvoices(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, "/invoices/export.xlsx")
}

// GetProfile returns the caller's profile.
func (c *Client) GetProfile(ctx context.Context) (profiles.Profile, error) {
	var out profiles.Profile
	err := c.doJSON(ctx, http.MethodGet, "/profiles", nil, &out)
	return out, err
}

// CreateProfile creates the caller's profile.
func (c *Client) CreateProfile(ctx context.Context, in profiles.ProfileInput) (profiles.Profile, error) {
	var out profiles.Profile
	err := c.doJSON(ctx, http.MethodPost, "/profiles", in, &out)
	return out, err
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, update profiles.ProfileUpdate) (profiles.Profile, error) {
	var out profiles.Profile
	err := c.doJSON(ctx, http.MethodPatch, "/profiles", update, &out)
	return out, err
}

// DeleteProfile removes the caller's profile.
func (c *Client) DeleteProfile(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/profiles", nil, nil)
}

// UploadPicture sends a profile picture as multipart field "file".
func (c *Client) UploadPicture(ctx context.Context, filename string, body io.Reader) (profiles.Profile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return profiles.Profile{}, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return profiles.Profile{}, err
	}
	if err := mw.Close(); err != nil {
		return profiles.Profile{}, err
	}
	var out profiles.Profile
	err = c.do(ctx, http.MethodPut, "/profiles/picture", mw.FormDataContentType(), &buf, &out)
	return out, err
}

// ListAccounts returns the caller's payout accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]profiles.Account, error) {
	var out []profiles.Account
	err := c.doJSON(ctx, http.MethodGet, "/accounts", nil, &out)
	return out, err
}

// CreateAccount adds a payout account.
func (c *Client) CreateAccount(ctx context.Context, in profiles.AccountInput) (profiles.Account, error) {
	var out profiles.Account
	err := c.doJSON(ctx, http.MethodPost, "/accounts", in, &out)
	return out, err
}

// DeleteAccount removes a payout account.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.do(ctx, http.MethodGet, path, "", nil, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, reqBody, out)
}

// do sends one request. out may be nil, a *bytes.Buffer for raw bodies, or a JSON target.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RemoteError{Method: method, Path: path, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.session.Valid() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &RemoteError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(method, path, resp)
	}
	switch target := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *bytes.Buffer:
		_, err = target.ReadFrom(resp.Body)
	default:
		err = json.NewDecoder(resp.Body).Decode(target)
	}
	if err != nil {
		return &RemoteError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(method, path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	rerr := &RemoteError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(data)),
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		rerr.Err = invoicing.ErrNotFound
	case http.StatusUnauthorized:
		rerr.Err = auth.ErrUnauthorized
	case http.StatusUnprocessableEntity:
		var verr invoicing.ValidationError
		switch {
		case json.Unmarshal(data, &verr) == nil && len(verr.Fields) > 0:
			rerr.Err = &verr
			rerr.Message = ""
		case strings.Contains(rerr.Message, invoicing.ErrInvalidAmount.Error()):
			rerr.Err = invoicing.ErrInvalidAmount
		}
	case http.StatusBadRequest:
		if strings.Contains(rerr.Message, invoicing.ErrInvalidStatus.Error()) {
			rerr.Err = invoicing.ErrInvalidStatus
		}
	case http.StatusConflict:
		if strings.Contains(rerr.Message, invoicing.ErrInvalidTransition.Error()) {
			rerr.Err = invoicing.ErrInvalidTransition
		}
	}
	rerr.mapped = rerr.Err != nil
	return rerr
}
