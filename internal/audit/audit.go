package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry represents an audit log entry.
type Entry struct {
	ID            string
	Actor         string
	Action        string
	ResourceType  string
	ResourceID    string
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ClientIP returns the caller address, preferring X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LogLogger writes entries to a standard logger. It is used when no database is configured.
type LogLogger struct {
	logger *log.Logger
}

// NewLogLogger constructs a LogLogger.
func NewLogLogger(logger *log.Logger) *LogLogger {
	if logger == nil {
		return nil
	}
	return &LogLogger{logger: logger}
}

// Log writes one line per entry.
func (l *LogLogger) Log(ctx context.Context, entry Entry) error {
	_ = ctx
	if l == nil || l.logger == nil {
		return nil
	}
	l.logger.Printf("audit actor=%s action=%s resource=%s/%s ip=%s", entry.Actor, entry.Action, entry.ResourceType, entry.ResourceID, entry.IP)
	return nil
}
