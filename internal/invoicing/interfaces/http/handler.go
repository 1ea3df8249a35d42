package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"invoicing-cloud/internal/audit"
	"invoicing-cloud/internal/auth"
	invoiceapp "invoicing-cloud/internal/invoicing/application"
	invoicing "invoicing-cloud/internal/invoicing/domain"
	"invoicing-cloud/internal/observability/metrics"
)

const maxBodyBytes = 1 << 20

// IssuerSource resolves the sender block for the caller.
type IssuerSource interface {
	Issuer(ctx context.Context) (Issuer, error)
}

// IssuerFunc adapts a function to IssuerSource.
type IssuerFunc func(ctx context.Context) (Issuer, error)

// Issuer calls f.
func (f IssuerFunc) Issuer(ctx context.Context) (Issuer, error) { return f(ctx) }

// InvoiceHandler serves /invoices.
type InvoiceHandler struct {
	service     *invoiceapp.InvoiceService
	issuers     IssuerSource
	auditLogger audit.Logger
	logger      *log.Logger
	currency    string
}

// NewInvoiceHandler constructs a handler. issuers may be nil.
func NewInvoiceHandler(service *invoiceapp.InvoiceService, issuers IssuerSource, auditLogger audit.Logger, logger *log.Logger, currency string) (*InvoiceHandler, error) {
	if service == nil {
		return nil, errors.New("invoice handler: nil service")
	}
	if currency == "" {
		currency = "USD"
	}
	return &InvoiceHandler{
		service:     service,
		issuers:     issuers,
		auditLogger: auditLogger,
		logger:      logger,
		currency:    currency,
	}, nil
}

// Routes mounts the invoice endpoints.
func (h *InvoiceHandler) Routes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/summary", h.handleSummary)
	r.Get("/export.xlsx", h.handleExportList)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Delete("/", h.handleDelete)
		r.Get("/download", h.handleDownload)
		r.Patch("/status", h.handleStatus)
		r.Post("/payments", h.handlePayment)
	})
}

type validationResponse struct {
	Error  string                 `json:"error"`
	Fields []invoicing.FieldError `json:"fields"`
}

func (h *InvoiceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	req, err := invoicing.ParseCreationRequest(body)
	if err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv.Record())
	h.logAudit(r, inv.ID(), "invoice.create", map[string]any{
		"client": inv.ClientName(),
		"total":  invoicing.FormatMoney(inv.Total()),
	})
}

func (h *InvoiceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	records := make([]invoicing.Record, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, inv.Record())
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *InvoiceHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *InvoiceHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv.Record())
}

func (h *InvoiceHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	raw := r.URL.Query().Get("status")
	if raw == "" {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if len(bytes.TrimSpace(data)) > 0 {
			var body struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(data, &body); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			raw = body.Status
		}
	}
	inv, err := h.service.UpdateStatus(r.Context(), id, raw)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv.Record())
	h.logAudit(r, inv.ID(), "invoice.status", map[string]any{"status": inv.Status()})
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label"`
	Date   string          `json:"date"`
}

func (h *InvoiceHandler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var paidAt time.Time
	if strings.TrimSpace(req.Date) != "" {
		if t, err := time.Parse(time.RFC3339, req.Date); err == nil {
			paidAt = t.UTC()
		} else {
			day, err := invoicing.ParseDate(req.Date)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			paidAt = day.Time()
		}
	}
	inv, err := h.service.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Label, paidAt)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv.Record())
	h.logAudit(r, inv.ID(), "invoice.payment", map[string]any{
		"amount": invoicing.FormatMoney(req.Amount),
	})
}

func (h *InvoiceHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, id, "invoice.delete", nil)
}

func (h *InvoiceHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		http.Error(w, "format must be pdf or xlsx", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceExport(format, result, time.Since(start))
	}()

	inv, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		result = metrics.ResultError
		h.respondServiceError(w, err)
		return
	}
	var (
		data        []byte
		contentType string
	)
	if format == "xlsx" {
		data, err = BuildInvoiceXLSX(inv, h.currency)
		contentType = contentTypeXLSX
	} else {
		issuer := h.lookupIssuer(r.Context())
		data, err = BuildInvoicePDF(inv, issuer, h.currency)
		contentType = contentTypePDF
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="invoice_`+inv.ID()+`.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, inv.ID(), "invoice.export", map[string]any{"format": format})
}

func (h *InvoiceHandler) handleExportList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceExport("xlsx_list", result, time.Since(start))
	}()

	invoices, err := h.service.List(r.Context())
	if err != nil {
		result = metrics.ResultError
		h.respondServiceError(w, err)
		return
	}
	data, err := BuildInvoiceListXLSX(invoices)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "", "invoice.export", map[string]any{"format": "xlsx", "count": len(invoices)})
}

// lookupIssuer never fails the download; a missing profile prints no sender block.
func (h *InvoiceHandler) lookupIssuer(ctx context.Context) Issuer {
	if h.issuers == nil {
		return Issuer{}
	}
	issuer, err := h.issuers.Issuer(ctx)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("invoice download: issuer lookup: %v", err)
		}
		return Issuer{}
	}
	return issuer
}

func (h *InvoiceHandler) logAudit(r *http.Request, invoiceID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload []byte
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Action:       action,
		ResourceType: "invoice",
		ResourceID:   invoiceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func (h *InvoiceHandler) respondServiceError(w http.ResponseWriter, err error) {
	var verr *invoicing.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, auth.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, invoicing.ErrNotFound):
		http.Error(w, "Invoice not found", http.StatusNotFound)
	case errors.Is(err, invoicing.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, invoicing.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, invoicing.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		if h.logger != nil {
			h.logger.Printf("invoices: %v", err)
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
