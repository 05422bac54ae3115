package reporting

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/manabihub/insights/pkg/httputil"
	"github.com/manabihub/insights/pkg/observability"
)

// maxExportRows bounds a single export request
const maxExportRows = 100000

// Handler serves the usage report endpoints
type Handler struct {
	service    *Service
	presets    ExportPresets
	logger     *observability.Logger
	windowDays int
}

// NewHandler creates the reporting HTTP handler
func NewHandler(service *Service, presets ExportPresets, logger *observability.Logger, windowDays int) *Handler {
	if presets == nil {
		presets = DefaultExportPresets()
	}
	return &Handler{service: service, presets: presets, logger: logger, windowDays: windowDays}
}

// RegisterRoutes registers the usage report read routes. The export route is
// registered separately so the caller can wrap it in its own capability check
// and rate limit.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/reports/usage/series", h.GetSeries).Methods("GET")
	router.HandleFunc("/reports/usage/roles", h.GetRoles).Methods("GET")
	router.HandleFunc("/reports/usage/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/reports/usage/activity", h.GetActivity).Methods("GET")
}

// RegisterExportRoute registers the export route wrapped in the given
// middleware chain.
func (h *Handler) RegisterExportRoute(router *mux.Router, wrap func(http.Handler) http.Handler) {
	handler := http.Handler(http.HandlerFunc(h.Export))
	if wrap != nil {
		handler = wrap(handler)
	}
	router.Handle("/reports/usage/export", handler).Methods("GET")
}

func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (Filter, bool) {
	filter, err := ParseFilter(r.URL.Query(), h.windowDays)
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return Filter{}, false
	}
	return filter, true
}

// GetSeries returns active-user counts bucketed by period and role
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	report, err := h.service.GetPeriodSeries(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build period series")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, report)
}

// GetRoles returns window-wide distinct user counts per role
func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	report, err := h.service.GetRoleBreakdown(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build role breakdown")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, report)
}

// GetStats returns the flat dashboard summary
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetDashboardStats(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build dashboard stats")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, stats)
}

// GetActivity returns a page of drill-down activity rows
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	page := httputil.ParsePagination(r)
	report, err := h.service.GetDetailedRows(r.Context(), filter, page.Page, page.PageSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch activity rows")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, report)
}

// Export streams the filtered activity rows as a downloadable file
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	format, ok := ParseExportFormat(r.URL.Query().Get("format"))
	if !ok {
		httputil.WriteValidationError(w, "format must be one of csv, json, ndjson")
		return
	}

	preset, ok := h.presets.Get(r.URL.Query().Get("preset"))
	if !ok {
		httputil.WriteValidationError(w, "unknown export preset")
		return
	}

	report, err := h.service.GetDetailedRows(r.Context(), filter, 1, maxExportRows)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch export rows")
		httputil.WriteInternalError(w, err)
		return
	}

	filename := fmt.Sprintf("usage_%s_%s.%s",
		filter.From.Format("20060102"), filter.To.Format("20060102"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := WriteExport(w, format, preset, report.Rows); err != nil {
		h.logger.WithError(err).WithField("format", string(format)).
			Error("Export serialization failed")
	}

	h.logger.WithFields(map[string]interface{}{
		"rows":   len(report.Rows),
		"format": string(format),
		"preset": preset.Name,
	}).Debug("Export complete")
}
