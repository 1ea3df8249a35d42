package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"invoicing-cloud/internal/audit"
	"invoicing-cloud/internal/auth"
	identityapp "invoicing-cloud/internal/identity/application"
	identity "invoicing-cloud/internal/identity/domain"
)

// UserHandler serves /users.
type UserHandler struct {
	service     *identityapp.UserService
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewUserHandler constructs a handler.
func NewUserHandler(service *identityapp.UserService, auditLogger audit.Logger, logger *log.Logger) (*UserHandler, error) {
	if service == nil {
		return nil, errors.New("user handler: nil service")
	}
	return &UserHandler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// Routes mounts the user endpoints.
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/me", h.handleMe)
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req identity.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username, Email: user.Email})
	h.logAudit(r, user.ID, "user.register")
}

// handleLogin accepts an OAuth2 password form or a JSON body.
func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		creds.Username = r.PostForm.Get("username")
		creds.Password = r.PostForm.Get("password")
	}
	token, err := h.service.Login(r.Context(), strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

func (h *UserHandler) logAudit(r *http.Request, userID, action string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        userID,
		Action:       action,
		ResourceType: "user",
		ResourceID:   userID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func (h *UserHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrUserExists):
		http.Error(w, "username or email already registered", http.StatusConflict)
	case errors.Is(err, identity.ErrInvalidUser):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, identity.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "incorrect username or password", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, identity.ErrUserNotFound):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		if h.logger != nil {
			h.logger.Printf("users: %v", err)
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
