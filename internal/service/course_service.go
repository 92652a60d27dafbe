package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/coursecode"
	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/repository"
	"github.com/Freeeeeet/attendance_bot/internal/schedule"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// createCourseAttempts - сколько раз заново подбираем код, если вставку опередил другой курс
const createCourseAttempts = 2

// CreateCourseInput - данные нового курса в локальном времени учителя
type CreateCourseInput struct {
	Title     string    `validate:"required,min=3,max=100"`
	Days      []int     `validate:"required,min=1,max=7,unique,dive,min=0,max=6"`
	StartTime string    `validate:"required,datetime=15:04"`
	EndTime   string    `validate:"required,datetime=15:04"`
	UTCOffset int       `validate:"min=-840,max=840"` // local = UTC - offset
	StartsAt  time.Time `validate:"required"`
	EndsAt    time.Time `validate:"required,gtfield=StartsAt"`
}

// Occurrence - занятие курса, идущее сейчас
type Occurrence struct {
	Course    *model.Course
	Meeting   schedule.Tuple
	SlotStart time.Time
	Attendees int
}

type CourseService struct {
	courseRepo   courseStore
	attendeeRepo attendeeStore
	userRepo     userStore
	codes        *coursecode.Generator
	validate     *validator.Validate
	now          func() time.Time
	logger       *zap.Logger
}

func NewCourseService(
	courseRepo courseStore,
	attendeeRepo attendeeStore,
	userRepo userStore,
	codes *coursecode.Generator,
	now func() time.Time,
	logger *zap.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:   courseRepo,
		attendeeRepo: attendeeRepo,
		userRepo:     userRepo,
		codes:        codes,
		validate:     validator.New(),
		now:          now,
		logger:       logger,
	}
}

// CreateCourse создаёт курс с еженедельным расписанием и уникальным кодом
func (s *CourseService) CreateCourse(ctx context.Context, teacherID int64, in CreateCourseInput) (*model.Course, error) {
	teacher, err := s.userRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil {
		return nil, ErrUserNotFound
	}
	if !teacher.IsTeacher {
		return nil, ErrNotTeacher
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	encoded, err := schedule.Encode(in.Days, in.StartTime, in.EndTime, in.UTCOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	course := &model.Course{
		Title:             in.Title,
		TeacherID:         teacherID,
		Schedule:          encoded,
		UTCOffset:         in.UTCOffset,
		StartsAt:          in.StartsAt.UTC(),
		EndsAt:            in.EndsAt.UTC(),
		TeacherTelegramID: teacher.TelegramID,
	}

	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate(ctx, s.courseRepo.CodeExists)
		if err != nil {
			s.logger.Error("Failed to generate course code",
				zap.Int64("teacher_id", teacherID),
				zap.Error(err))
			return nil, fmt.Errorf("generate course code: %w", err)
		}
		course.Code = code

		err = s.courseRepo.Create(ctx, course)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt >= createCourseAttempts {
			return nil, fmt.Errorf("create course: %w", err)
		}

		s.logger.Warn("Course code taken between check and insert, regenerating",
			zap.String("code", code),
			zap.Int("attempt", attempt))
	}

	s.logger.Info("Course created",
		zap.Int64("course_id", course.ID),
		zap.String("code", course.Code),
		zap.Int64("teacher_id", teacherID),
		zap.Int("meetings", len(course.Schedule)),
		zap.Time("starts_at", course.StartsAt),
		zap.Time("ends_at", course.EndsAt),
	)

	return course, nil
}

// GetTeacherCourses получает курсы учителя
func (s *CourseService) GetTeacherCourses(ctx context.Context, teacherID int64) ([]*model.Course, error) {
	return s.courseRepo.GetByTeacherID(ctx, teacherID)
}

// GetActiveCourses получает курсы, идущие в текущем периоде
func (s *CourseService) GetActiveCourses(ctx context.Context) ([]*model.Course, error) {
	return s.courseRepo.GetActive(ctx, s.now().UTC())
}

// GetCourseByCode получает курс по коду, введённому пользователем
func (s *CourseService) GetCourseByCode(ctx context.Context, rawCode string) (*model.Course, error) {
	code := coursecode.Normalize(rawCode)
	if !coursecode.Validate(code) {
		return nil, ErrInvalidCourseCode
	}

	course, err := s.courseRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	return course, nil
}

// GetAttendees получает отметки курса. Доступно только владельцу курса.
func (s *CourseService) GetAttendees(ctx context.Context, teacherID int64, rawCode string) (*model.Course, []*model.Attendee, error) {
	course, err := s.GetCourseByCode(ctx, rawCode)
	if err != nil {
		return nil, nil, err
	}

	if course.TeacherID != teacherID {
		return nil, nil, ErrForbidden
	}

	attendees, err := s.attendeeRepo.GetByCourseID(ctx, course.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("get attendees: %w", err)
	}

	return course, attendees, nil
}

// CurrentOccurrence возвращает идущее сейчас занятие курса или ErrOutsideSchedule
func (s *CourseService) CurrentOccurrence(ctx context.Context, rawCode string) (*Occurrence, error) {
	course, err := s.GetCourseByCode(ctx, rawCode)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	meeting, ok := course.CurrentMeeting(now)
	if !ok {
		return nil, ErrOutsideSchedule
	}

	slot := schedule.SlotStart(meeting, now)
	count, err := s.attendeeRepo.CountBySlot(ctx, course.ID, slot)
	if err != nil {
		return nil, fmt.Errorf("count attendees: %w", err)
	}

	return &Occurrence{
		Course:    course,
		Meeting:   meeting,
		SlotStart: slot,
		Attendees: count,
	}, nil
}
