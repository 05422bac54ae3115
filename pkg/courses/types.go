package courses

import "time"

// KnownLevels are the JLPT proficiency levels a course can target
var KnownLevels = map[string]bool{
	"N5": true,
	"N4": true,
	"N3": true,
	"N2": true,
	"N1": true,
}

// Course is one authored course with its nested modules
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Level       string    `json:"level"`
	CreatedBy   int64     `json:"created_by"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	Modules     []Module  `json:"modules"`
}

// Module is one ordered unit within a course
type Module struct {
	ID       int64    `json:"id"`
	CourseID int64    `json:"course_id"`
	Title    string   `json:"title"`
	Position int      `json:"position"`
	Lessons  []Lesson `json:"lessons"`
}

// Lesson is one ordered lesson within a module
type Lesson struct {
	ID       int64  `json:"id"`
	ModuleID int64  `json:"module_id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Position int    `json:"position"`
}

// CreateCourseRequest is the authoring payload. Modules and lessons are
// created in the order given; positions are assigned from that order.
type CreateCourseRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Level       string                `json:"level"`
	Modules     []CreateModuleRequest `json:"modules"`
}

// CreateModuleRequest is one module within a course creation payload
type CreateModuleRequest struct {
	Title   string                `json:"title"`
	Lessons []CreateLessonRequest `json:"lessons"`
}

// CreateLessonRequest is one lesson within a module creation payload
type CreateLessonRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks the authoring payload before any rows are written
func (r *CreateCourseRequest) Validate() error {
	if r.Title == "" {
		return errMissing("title")
	}
	if !KnownLevels[r.Level] {
		return errUnknownLevel(r.Level)
	}
	for _, m := range r.Modules {
		if m.Title == "" {
			return errMissing("module title")
		}
		for _, l := range m.Lessons {
			if l.Title == "" {
				return errMissing("lesson title")
			}
		}
	}
	return nil
}
