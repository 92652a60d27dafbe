package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/model"
)

// Интерфейсы хранилищ, которые реализует пакет repository

type userStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type courseStore interface {
	Create(ctx context.Context, course *model.Course) error
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.Course, error)
	GetActive(ctx context.Context, now time.Time) ([]*model.Course, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

type attendeeStore interface {
	Create(ctx context.Context, attendee *model.Attendee) error
	GetByCourseID(ctx context.Context, courseID int64) ([]*model.Attendee, error)
	CountBySlot(ctx context.Context, courseID int64, slotStart time.Time) (int, error)
}

type tokenStore interface {
	Get(ctx context.Context, telegramID int64, courseCode string) (string, error)
	Set(ctx context.Context, telegramID int64, courseCode, token string) error
}
