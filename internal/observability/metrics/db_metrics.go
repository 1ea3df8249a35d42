package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	for _, status := range []string{"unpaid", "paid"} {
		status := status
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        metricPrefix + "invoices",
				Help:        "Stored invoices by status",
				ConstLabels: prometheus.Labels{"status": status},
			},
			func() float64 {
				return queryCount(db, logger, "SELECT COUNT(*) FROM invoices WHERE status = $1", status)
			},
		))
	}

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "users",
			Help: "Registered users",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM users")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string, args ...any) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
