package courses

import (
	"context"
	"database/sql"
	"fmt"
)

func errMissing(field string) error {
	return fmt.Errorf("%s is required", field)
}

func errUnknownLevel(level string) error {
	return fmt.Errorf("unknown level %q: must be one of N5..N1", level)
}

// ErrNotFound is returned when a course does not exist
var ErrNotFound = sql.ErrNoRows

// Store persists courses with their module and lesson trees
type Store struct {
	db *sql.DB
}

// NewStore creates a course store over a database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create writes a course and its nested modules and lessons in one
// transaction. Any failure rolls the whole tree back.
func (s *Store) Create(ctx context.Context, req *CreateCourseRequest, createdBy int64) (*Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	course := &Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		CreatedBy:   createdBy,
		Modules:     []Module{},
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO courses (title, description, level, created_by)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		req.Title, req.Description, req.Level, createdBy).
		Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert course: %w", err)
	}

	for mi, mreq := range req.Modules {
		module := Module{
			CourseID: course.ID,
			Title:    mreq.Title,
			Position: mi + 1,
			Lessons:  []Lesson{},
		}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO course_modules (course_id, title, position)
			 VALUES ($1, $2, $3) RETURNING id`,
			course.ID, mreq.Title, module.Position).Scan(&module.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert module: %w", err)
		}

		for li, lreq := range mreq.Lessons {
			lesson := Lesson{
				ModuleID: module.ID,
				Title:    lreq.Title,
				Content:  lreq.Content,
				Position: li + 1,
			}
			err = tx.QueryRowContext(ctx,
				`INSERT INTO lessons (module_id, title, content, position)
				 VALUES ($1, $2, $3, $4) RETURNING id`,
				module.ID, lreq.Title, lreq.Content, lesson.Position).Scan(&lesson.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to insert lesson: %w", err)
			}
			module.Lessons = append(module.Lessons, lesson)
		}
		course.Modules = append(course.Modules, module)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit course: %w", err)
	}
	return course, nil
}

// Get loads a course with its full module and lesson tree
func (s *Store) Get(ctx context.Context, id int64) (*Course, error) {
	course := &Course{Modules: []Module{}}
	var description sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, level, created_by, published, created_at
		 FROM courses WHERE id = $1`, id).
		Scan(&course.ID, &course.Title, &description, &course.Level,
			&course.CreatedBy, &course.Published, &course.CreatedAt)
	if err != nil {
		return nil, err
	}
	course.Description = description.String

	moduleRows, err := s.db.QueryContext(ctx,
		`SELECT id, title, position FROM course_modules
		 WHERE course_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer moduleRows.Close()

	for moduleRows.Next() {
		module := Module{CourseID: id, Lessons: []Lesson{}}
		if err := moduleRows.Scan(&module.ID, &module.Title, &module.Position); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		course.Modules = append(course.Modules, module)
	}
	if err := moduleRows.Err(); err != nil {
		return nil, err
	}

	for i := range course.Modules {
		lessons, err := s.loadLessons(ctx, course.Modules[i].ID)
		if err != nil {
			return nil, err
		}
		course.Modules[i].Lessons = lessons
	}

	return course, nil
}

func (s *Store) loadLessons(ctx context.Context, moduleID int64) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(content, ''), position FROM lessons
		 WHERE module_id = $1 ORDER BY position`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []Lesson{}
	for rows.Next() {
		lesson := Lesson{ModuleID: moduleID}
		if err := rows.Scan(&lesson.ID, &lesson.Title, &lesson.Content, &lesson.Position); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// List returns course summaries without their module trees, newest first
func (s *Store) List(ctx context.Context, limit, offset int) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(description, ''), level, created_by, published, created_at
		 FROM courses ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	list := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Level,
			&c.CreatedBy, &c.Published, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		c.Modules = []Module{}
		list = append(list, c)
	}
	return list, rows.Err()
}

// SetPublished toggles a course's published flag
func (s *Store) SetPublished(ctx context.Context, id int64, published bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE courses SET published = $1 WHERE id = $2", published, id)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a course with its modules and lessons in one transaction
func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM lessons WHERE module_id IN
		 (SELECT id FROM course_modules WHERE course_id = $1)`, id); err != nil {
		return fmt.Errorf("failed to delete lessons: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM course_modules WHERE course_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete modules: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
