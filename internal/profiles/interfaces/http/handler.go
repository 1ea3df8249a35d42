package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invoicing-cloud/internal/audit"
	"invoicing-cloud/internal/auth"
	profileapp "invoicing-cloud/internal/profiles/application"
	profiles "invoicing-cloud/internal/profiles/domain"
	"invoicing-cloud/internal/storage"
)

// Handler serves /profiles and /accounts.
type Handler struct {
	service     *profileapp.Service
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *profileapp.Service, auditLogger audit.Logger, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("profile handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ProfileRoutes mounts /profiles.
func (h *Handler) ProfileRoutes(r chi.Router) {
	r.Get("/", h.handleGetProfile)
	r.Post("/", h.handleCreateProfile)
	r.Patch("/", h.handleUpdateProfile)
	r.Delete("/", h.handleDeleteProfile)
	r.Put("/picture", h.handleUploadPicture)
}

// AccountRoutes mounts /accounts.
func (h *Handler) AccountRoutes(r chi.Router) {
	r.Get("/", h.handleListAccounts)
	r.Post("/", h.handleCreateAccount)
	r.Delete("/{id}", h.handleDeleteAccount)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var in profiles.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	profile, err := h.service.CreateProfile(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
	h.logAudit(r, "profile.create", "profile", profile.UserID)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update profiles.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), update)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
	h.logAudit(r, "profile.update", "profile", profile.UserID)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProfile(r.Context()); err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile deleted"})
	h.logAudit(r, "profile.delete", "profile", auth.UserIDFromContext(r.Context()))
}

func (h *Handler) handleUploadPicture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, profileapp.MaxPictureBytes+1<<20)
	if err := r.ParseMultipartForm(profileapp.MaxPictureBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	profile, err := h.service.UploadPicture(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
	h.logAudit(r, "profile.picture", "profile", profile.UserID)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in profiles.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	account, err := h.service.CreateAccount(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
	h.logAudit(r, "account.create", "account", account.ID)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
	h.logAudit(r, "account.delete", "account", id)
}

func (h *Handler) logAudit(r *http.Request, action, resourceType, resourceID string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, profiles.ErrProfileNotFound):
		http.Error(w, "Profile not found", http.StatusNotFound)
	case errors.Is(err, profiles.ErrAccountNotFound):
		http.Error(w, "Account not found", http.StatusNotFound)
	case errors.Is(err, profiles.ErrProfileExists):
		http.Error(w, "profile already exists", http.StatusConflict)
	case errors.Is(err, profiles.ErrInvalidProfile), errors.Is(err, profiles.ErrInvalidAccount), errors.Is(err, storage.ErrInvalidKey):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		if h.logger != nil {
			h.logger.Printf("profiles: %v", err)
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
