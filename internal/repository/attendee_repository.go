package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	attendeeSlotConstraint        = "attendees_once_per_slot"
	attendeeStudentSlotConstraint = "attendees_student_once_per_slot"
)

type AttendeeRepository struct {
	*base.Repository
}

func NewAttendeeRepository(pool *pgxpool.Pool) *AttendeeRepository {
	return &AttendeeRepository{Repository: base.NewRepository(pool)}
}

// Create сохраняет отметку. Повторная отметка на том же занятии (по документу
// или по Telegram-аккаунту) возвращает ErrDuplicate.
func (r *AttendeeRepository) Create(ctx context.Context, attendee *model.Attendee) error {
	query := `
		INSERT INTO attendees (id, course_id, first_name, surname, national_id, slot_start, telegram_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		attendee.ID,
		attendee.CourseID,
		attendee.FirstName,
		attendee.Surname,
		attendee.NationalID,
		attendee.SlotStart,
		attendee.TelegramID,
	).Scan(&attendee.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, attendeeSlotConstraint) || base.IsUniqueViolation(err, attendeeStudentSlotConstraint) {
			return fmt.Errorf("create attendee: %w", ErrDuplicate)
		}
		return fmt.Errorf("create attendee: %w", err)
	}

	return nil
}

// GetByCourseID получает все отметки курса, последние занятия первыми
func (r *AttendeeRepository) GetByCourseID(ctx context.Context, courseID int64) ([]*model.Attendee, error) {
	query := `
		SELECT id, course_id, first_name, surname, national_id, slot_start, telegram_id, created_at
		FROM attendees
		WHERE course_id = $1
		ORDER BY slot_start DESC, created_at
	`

	rows, err := r.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("get attendees by course: %w", err)
	}
	defer rows.Close()

	var attendees []*model.Attendee
	for rows.Next() {
		var a model.Attendee
		err := rows.Scan(
			&a.ID,
			&a.CourseID,
			&a.FirstName,
			&a.Surname,
			&a.NationalID,
			&a.SlotStart,
			&a.TelegramID,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendees: %w", err)
	}

	return attendees, nil
}

// CountBySlot подсчитывает отметки на конкретном занятии
func (r *AttendeeRepository) CountBySlot(ctx context.Context, courseID int64, slotStart time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM attendees WHERE course_id = $1 AND slot_start = $2`

	var count int
	if err := r.QueryRow(ctx, query, courseID, slotStart).Scan(&count); err != nil {
		return 0, fmt.Errorf("count attendees by slot: %w", err)
	}

	return count, nil
}
