package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/attendance"
	"github.com/Freeeeeet/attendance_bot/internal/coursecode"
	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckInInput - данные студента для отметки
type CheckInInput struct {
	TelegramID int64
	Code       string `validate:"required"`
	FirstName  string `validate:"required,max=100"`
	Surname    string `validate:"required,max=100"`
	NationalID string `validate:"required,alphanum,min=4,max=32"`
}

// CheckInResult - успешная отметка
type CheckInResult struct {
	Course   *model.Course
	Attendee *model.Attendee
	Token    string
}

type AttendanceService struct {
	courseRepo   courseStore
	attendeeRepo attendeeStore
	tokenRepo    tokenStore
	validate     *validator.Validate
	now          func() time.Time
	logger       *zap.Logger
}

func NewAttendanceService(
	courseRepo courseStore,
	attendeeRepo attendeeStore,
	tokenRepo tokenStore,
	now func() time.Time,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		courseRepo:   courseRepo,
		attendeeRepo: attendeeRepo,
		tokenRepo:    tokenRepo,
		validate:     validator.New(),
		now:          now,
		logger:       logger,
	}
}

// CheckIn отмечает студента на идущем сейчас занятии курса.
// ErrOutsideSchedule - занятия нет, ErrAlreadyCheckedIn - студент уже отмечен на этом занятии.
func (s *AttendanceService) CheckIn(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	in.Code = coursecode.Normalize(in.Code)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Surname = strings.TrimSpace(in.Surname)
	in.NationalID = strings.ToUpper(strings.TrimSpace(in.NationalID))

	if !coursecode.Validate(in.Code) {
		return nil, ErrInvalidCourseCode
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", checkInInputError(err), err)
	}

	course, err := s.courseRepo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	now := s.now().UTC()
	meeting, ok := course.CurrentMeeting(now)
	if !ok {
		s.logger.Debug("Check-in outside schedule",
			zap.String("code", course.Code),
			zap.Int64("telegram_id", in.TelegramID),
			zap.Time("now", now))
		return nil, ErrOutsideSchedule
	}

	// Недоступный токен не блокирует отметку: дубль всё равно отсечёт БД
	token, err := s.tokenRepo.Get(ctx, in.TelegramID, course.Code)
	if err != nil {
		s.logger.Warn("Failed to load attendance token",
			zap.Int64("telegram_id", in.TelegramID),
			zap.String("code", course.Code),
			zap.Error(err))
		token = ""
	}

	decision := attendance.Validate(token, course.Code, meeting, now)
	if !decision.Allow {
		s.logger.Info("Duplicate check-in rejected by token",
			zap.String("code", course.Code),
			zap.Int64("telegram_id", in.TelegramID),
			zap.Time("slot_start", decision.Slot))
		return nil, ErrAlreadyCheckedIn
	}

	attendee := &model.Attendee{
		ID:         uuid.New(),
		CourseID:   course.ID,
		FirstName:  in.FirstName,
		Surname:    in.Surname,
		NationalID: in.NationalID,
		SlotStart:  decision.Slot,
		TelegramID: in.TelegramID,
	}

	err = s.attendeeRepo.Create(ctx, attendee)
	if errors.Is(err, repository.ErrDuplicate) {
		s.logger.Info("Duplicate check-in rejected by database",
			zap.String("code", course.Code),
			zap.Int64("telegram_id", in.TelegramID),
			zap.Time("slot_start", decision.Slot))
		s.storeToken(ctx, in.TelegramID, course.Code, decision.Token)
		return nil, ErrAlreadyCheckedIn
	}
	if err != nil {
		return nil, fmt.Errorf("create attendee: %w", err)
	}

	s.storeToken(ctx, in.TelegramID, course.Code, decision.Token)

	s.logger.Info("Student checked in",
		zap.String("attendee_id", attendee.ID.String()),
		zap.Int64("course_id", course.ID),
		zap.String("code", course.Code),
		zap.Int64("telegram_id", in.TelegramID),
		zap.Time("slot_start", decision.Slot),
	)

	return &CheckInResult{
		Course:   course,
		Attendee: attendee,
		Token:    decision.Token,
	}, nil
}

// checkInInputError выбирает ошибку по полю: имя проверяется раньше документа
func checkInInputError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ErrInvalidInput
	}

	result := ErrInvalidInput
	for _, fe := range fieldErrors {
		switch fe.Field() {
		case "FirstName", "Surname":
			return ErrInvalidName
		case "NationalID":
			result = ErrInvalidNationalID
		}
	}
	return result
}

// storeToken сохраняет токен занятия; ошибка не отменяет уже записанную отметку
func (s *AttendanceService) storeToken(ctx context.Context, telegramID int64, courseCode, token string) {
	if err := s.tokenRepo.Set(ctx, telegramID, courseCode, token); err != nil {
		s.logger.Error("Failed to store attendance token",
			zap.Int64("telegram_id", telegramID),
			zap.String("code", courseCode),
			zap.Error(err))
	}
}
