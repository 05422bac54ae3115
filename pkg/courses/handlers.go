package courses

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/manabihub/insights/pkg/auth"
	"github.com/manabihub/insights/pkg/contextkeys"
	"github.com/manabihub/insights/pkg/httputil"
)

// Handlers handles course authoring API endpoints
type Handlers struct {
	store  *Store
	logger *logrus.Logger
}

// NewHandlers creates a new course handlers instance
func NewHandlers(db *sql.DB, logger *logrus.Logger) *Handlers {
	return &Handlers{store: NewStore(db), logger: logger}
}

// RegisterRoutes registers course authoring routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/courses", h.createCourse).Methods("POST")
	r.HandleFunc("/courses", h.listCourses).Methods("GET")
	r.HandleFunc("/courses/{id}", h.getCourse).Methods("GET")
	r.HandleFunc("/courses/{id}", h.deleteCourse).Methods("DELETE")
	r.HandleFunc("/courses/{id}/publish", h.setPublished).Methods("PUT")
}

func courseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(httputil.GetPathVars(r)["id"], 10, 64)
}

// createCourse handles POST /courses
func (h *Handlers) createCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	var createdBy int64
	if authCtx, ok := contextkeys.Auth(r.Context()).(*auth.AuthContext); ok {
		createdBy = authCtx.UserID
	}

	course, err := h.store.Create(r.Context(), &req, createdBy)
	if err != nil {
		h.logger.Errorf("Failed to create course: %v", err)
		httputil.WriteInternalError(w, err)
		return
	}

	h.logger.Infof("Created course %d with %d modules", course.ID, len(course.Modules))
	httputil.WriteCreated(w, course)
}

// listCourses handles GET /courses
func (h *Handlers) listCourses(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r)

	list, err := h.store.List(r.Context(), page.PageSize, page.Offset())
	if err != nil {
		h.logger.Errorf("Failed to list courses: %v", err)
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

// getCourse handles GET /courses/{id}
func (h *Handlers) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httputil.WriteValidationError(w, "invalid course id")
		return
	}

	course, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.WriteNotFoundError(w, "course not found")
			return
		}
		h.logger.Errorf("Failed to load course %d: %v", id, err)
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, course)
}

// deleteCourse handles DELETE /courses/{id}
func (h *Handlers) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httputil.WriteValidationError(w, "invalid course id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "course not found")
			return
		}
		h.logger.Errorf("Failed to delete course %d: %v", id, err)
		httputil.WriteInternalError(w, err)
		return
	}

	h.logger.Infof("Deleted course %d", id)
	w.WriteHeader(http.StatusNoContent)
}

// setPublished handles PUT /courses/{id}/publish
func (h *Handlers) setPublished(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httputil.WriteValidationError(w, "invalid course id")
		return
	}

	var body struct {
		Published *bool `json:"published"`
	}
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if body.Published == nil {
		httputil.WriteValidationError(w, "published is required")
		return
	}

	if err := h.store.SetPublished(r.Context(), id, *body.Published); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "course not found")
			return
		}
		h.logger.Errorf("Failed to publish course %d: %v", id, err)
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"id":        id,
		"published": *body.Published,
	})
}
