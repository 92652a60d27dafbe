package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	courseColumns        = `c.id, c.code, c.title, c.teacher_id, c.schedule, c.utc_offset, c.starts_at, c.ends_at, c.created_at, u.telegram_id`
	courseCodeConstraint = "courses_code_key"
)

type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт курс. Занятый код возвращает ErrDuplicate.
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	if err := course.Schedule.Validate(); err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	scheduleJSON, err := json.Marshal(course.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	query := `
		INSERT INTO courses (code, title, teacher_id, schedule, utc_offset, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.QueryRow(
		ctx, query,
		course.Code,
		course.Title,
		course.TeacherID,
		scheduleJSON,
		course.UTCOffset,
		course.StartsAt,
		course.EndsAt,
	).Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, courseCodeConstraint) {
			return fmt.Errorf("create course %s: %w", course.Code, ErrDuplicate)
		}
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByCode получает курс по коду
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses c
		JOIN users u ON u.id = c.teacher_id
		WHERE c.code = $1
	`

	course, err := scanCourse(r.QueryRow(ctx, query, code))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by code: %w", err)
	}

	return course, nil
}

// GetByTeacherID получает все курсы учителя
func (r *CourseRepository) GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses c
		JOIN users u ON u.id = c.teacher_id
		WHERE c.teacher_id = $1
		ORDER BY c.starts_at DESC, c.id DESC
	`

	rows, err := r.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get courses by teacher: %w", err)
	}

	return collectCourses(rows)
}

// GetActive получает курсы, период которых содержит now
func (r *CourseRepository) GetActive(ctx context.Context, now time.Time) ([]*model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses c
		JOIN users u ON u.id = c.teacher_id
		WHERE c.starts_at <= $1 AND c.ends_at > $1
		ORDER BY c.id
	`

	rows, err := r.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("get active courses: %w", err)
	}

	return collectCourses(rows)
}

// CodeExists проверяет, существует ли курс с таким кодом
func (r *CourseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM courses WHERE code = $1)`

	var exists bool
	if err := r.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check course code exists: %w", err)
	}

	return exists, nil
}

func collectCourses(rows pgx.Rows) ([]*model.Course, error) {
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var (
		course       model.Course
		scheduleJSON []byte
	)

	err := row.Scan(
		&course.ID,
		&course.Code,
		&course.Title,
		&course.TeacherID,
		&scheduleJSON,
		&course.UTCOffset,
		&course.StartsAt,
		&course.EndsAt,
		&course.CreatedAt,
		&course.TeacherTelegramID,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scheduleJSON, &course.Schedule); err != nil {
		return nil, fmt.Errorf("decode schedule of course %d: %w", course.ID, err)
	}

	return &course, nil
}
