package model

import (
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/schedule"
)

// Course - курс с еженедельным расписанием. Расписание не меняется после создания.
type Course struct {
	ID        int64             `json:"id"`
	Code      string            `json:"code"` // XXX-XXX-XXX
	Title     string            `json:"title"`
	TeacherID int64             `json:"teacher_id"`
	Schedule  schedule.Schedule `json:"schedule"`
	UTCOffset int               `json:"utc_offset"` // минуты, local = UTC - offset
	StartsAt  time.Time         `json:"starts_at"`  // включительно
	EndsAt    time.Time         `json:"ends_at"`    // не включительно
	CreatedAt time.Time         `json:"created_at"`

	// Дополнительные поля для удобства (не из таблицы courses)
	TeacherTelegramID int64 `json:"teacher_telegram_id,omitempty"`
}

// CurrentMeeting возвращает идущее сейчас занятие курса
func (c *Course) CurrentMeeting(now time.Time) (schedule.Tuple, bool) {
	return schedule.Evaluate(c.Schedule, c.StartsAt, c.EndsAt, now)
}
