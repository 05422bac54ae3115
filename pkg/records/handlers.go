package records

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/manabihub/insights/pkg/httputil"
	"github.com/manabihub/insights/pkg/observability"
)

// Handler serves the flat dashboard record endpoints
type Handler struct {
	store  *Store
	logger *observability.Logger
}

// NewHandler creates the records HTTP handler
func NewHandler(store *Store, logger *observability.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the general record listings. Error logs and user
// administration carry their own capabilities and are registered separately.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/reports/logins", h.ListLogins).Methods("GET")
	router.HandleFunc("/reports/broken-links", h.ListBrokenLinks).Methods("GET")
}

// RegisterErrorLogRoutes registers the error log listing
func (h *Handler) RegisterErrorLogRoutes(router *mux.Router) {
	router.HandleFunc("/reports/errors", h.ListErrors).Methods("GET")
}

// RegisterUserAdminRoutes registers the account listing and toggling routes
func (h *Handler) RegisterUserAdminRoutes(router *mux.Router) {
	router.HandleFunc("/reports/users", h.ListUsers).Methods("GET")
	router.HandleFunc("/reports/users/{id}/active", h.SetUserActive).Methods("PUT")
}

func parseRecordFilter(r *http.Request) (RecordFilter, error) {
	var f RecordFilter
	q := r.URL.Query()

	if from := q.Get("date_from"); from != "" {
		parsed, err := time.ParseInLocation("2006-01-02", from, time.UTC)
		if err != nil {
			return f, errors.New("invalid date_from: must be YYYY-MM-DD")
		}
		f.DateFrom = parsed
	}
	if to := q.Get("date_to"); to != "" {
		parsed, err := time.ParseInLocation("2006-01-02", to, time.UTC)
		if err != nil {
			return f, errors.New("invalid date_to: must be YYYY-MM-DD")
		}
		f.DateTo = parsed
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateFrom.After(f.DateTo) {
		return f, errors.New("date_from must not be after date_to")
	}

	f.Level = strings.TrimSpace(q.Get("level"))
	f.Role = strings.TrimSpace(q.Get("role"))
	f.Search = strings.TrimSpace(q.Get("search"))

	if active := q.Get("is_active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			return f, errors.New("invalid is_active: must be true or false")
		}
		f.IsActive = &parsed
	}

	return f, nil
}

// ListErrors returns a page of application error rows
func (h *Handler) ListErrors(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	page := httputil.ParsePagination(r)
	result, err := h.store.ListErrors(r.Context(), filter, page.PageSize, page.Offset())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list error logs")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

// ListLogins returns a page of login rows
func (h *Handler) ListLogins(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	page := httputil.ParsePagination(r)
	result, err := h.store.ListLogins(r.Context(), filter, page.PageSize, page.Offset())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list logins")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

// ListBrokenLinks returns a page of broken link rows
func (h *Handler) ListBrokenLinks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	page := httputil.ParsePagination(r)
	result, err := h.store.ListBrokenLinks(r.Context(), filter, page.PageSize, page.Offset())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list broken links")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

// ListUsers returns a page of account rows
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	page := httputil.ParsePagination(r)
	result, err := h.store.ListUsers(r.Context(), filter, page.PageSize, page.Offset())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

// SetUserActive enables or disables an account
func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		httputil.WriteValidationError(w, "invalid user id")
		return
	}

	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if body.IsActive == nil {
		httputil.WriteValidationError(w, "is_active is required")
		return
	}

	if err := h.store.SetUserActive(r.Context(), userID, *body.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.WriteNotFoundError(w, "user not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update user")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"id":        userID,
		"is_active": *body.IsActive,
	})
}
