package model

import (
	"time"

	"github.com/google/uuid"
)

// Attendee - отметка студента на конкретном занятии курса
type Attendee struct {
	ID         uuid.UUID `json:"id"`
	CourseID   int64     `json:"course_id"`
	FirstName  string    `json:"first_name"`
	Surname    string    `json:"surname"`
	NationalID string    `json:"national_id"`
	SlotStart  time.Time `json:"slot_start"` // начало занятия недели, см. schedule.SlotStart
	TelegramID int64     `json:"telegram_id"`
	CreatedAt  time.Time `json:"created_at"`
}
