package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "invoicing_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	invoiceCreateTotal    *prometheus.CounterVec
	invoiceCreateLatency  *prometheus.HistogramVec
	invoiceStatusTotal    *prometheus.CounterVec
	invoiceStatusLatency  *prometheus.HistogramVec
	invoicePaymentTotal   *prometheus.CounterVec
	invoicePaymentLatency *prometheus.HistogramVec
	invoiceDeleteTotal    *prometheus.CounterVec

	invoiceExportTotal   *prometheus.CounterVec
	invoiceExportLatency *prometheus.HistogramVec

	authAttemptsTotal *prometheus.CounterVec
	webhookTotal      *prometheus.CounterVec
)

// Init registers invoicing metrics and, when db is set, DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		invoiceCreateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_create_total",
				Help: "Total invoice create operations by result",
			},
			[]string{"result"},
		)
		invoiceCreateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_create_latency_seconds",
				Help:    "Invoice create latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		invoiceStatusTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_status_total",
				Help: "Total invoice status updates by target status and result",
			},
			[]string{"status", "result"},
		)
		invoiceStatusLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_status_latency_seconds",
				Help:    "Invoice status update latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		invoicePaymentTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_payment_total",
				Help: "Total recorded payments by result",
			},
			[]string{"result"},
		)
		invoicePaymentLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_payment_latency_seconds",
				Help:    "Payment recording latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		invoiceDeleteTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_delete_total",
				Help: "Total invoice deletions by result",
			},
			[]string{"result"},
		)
		invoiceExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_export_total",
				Help: "Total invoice export operations by format and result",
			},
			[]string{"format", "result"},
		)
		invoiceExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_export_latency_seconds",
				Help:    "Invoice export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		authAttemptsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "auth_attempts_total",
				Help: "Total login and register attempts by kind and result",
			},
			[]string{"kind", "result"},
		)
		webhookTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "webhook_deliveries_total",
				Help: "Total status webhook deliveries by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			invoiceCreateTotal,
			invoiceCreateLatency,
			invoiceStatusTotal,
			invoiceStatusLatency,
			invoicePaymentTotal,
			invoicePaymentLatency,
			invoiceDeleteTotal,
			invoiceExportTotal,
			invoiceExportLatency,
			authAttemptsTotal,
			webhookTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveInvoiceCreate records create latency and result.
func ObserveInvoiceCreate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceCreateTotal != nil {
		invoiceCreateTotal.WithLabelValues(result).Inc()
	}
	if invoiceCreateLatency != nil {
		invoiceCreateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveInvoiceStatus records a status update.
func ObserveInvoiceStatus(status, result string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if invoiceStatusTotal != nil {
		invoiceStatusTotal.WithLabelValues(status, result).Inc()
	}
	if invoiceStatusLatency != nil {
		invoiceStatusLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveInvoicePayment records a payment append.
func ObserveInvoicePayment(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if invoicePaymentTotal != nil {
		invoicePaymentTotal.WithLabelValues(result).Inc()
	}
	if invoicePaymentLatency != nil {
		invoicePaymentLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncInvoiceDelete increments the delete counter.
func IncInvoiceDelete(result string) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceDeleteTotal != nil {
		invoiceDeleteTotal.WithLabelValues(result).Inc()
	}
}

// ObserveInvoiceExport records export latency and result.
func ObserveInvoiceExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if invoiceExportTotal != nil {
		invoiceExportTotal.WithLabelValues(format, result).Inc()
	}
	if invoiceExportLatency != nil {
		invoiceExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncAuthAttempt counts login and register attempts.
func IncAuthAttempt(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if authAttemptsTotal != nil {
		authAttemptsTotal.WithLabelValues(kind, result).Inc()
	}
}

// IncWebhookDelivery counts webhook attempts.
func IncWebhookDelivery(result string) {
	if result == "" {
		result = resultSuccess
	}
	if webhookTotal != nil {
		webhookTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
