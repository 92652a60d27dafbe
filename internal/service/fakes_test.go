package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type memoryUsers struct {
	mu    sync.Mutex
	users map[int64]*model.User
	next  int64
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[int64]*model.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	user.ID = m.next
	user.CreatedAt = time.Now()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *memoryUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramID == telegramID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

type memoryCourses struct {
	mu      sync.Mutex
	courses map[string]*model.Course
	next    int64
	// collisions - сколько следующих вставок завершатся ErrDuplicate
	collisions  int
	createCalls int
}

func newMemoryCourses() *memoryCourses {
	return &memoryCourses{courses: make(map[string]*model.Course)}
}

func (m *memoryCourses) Create(_ context.Context, course *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.collisions > 0 {
		m.collisions--
		return fmt.Errorf("create course %s: %w", course.Code, repository.ErrDuplicate)
	}
	if _, ok := m.courses[course.Code]; ok {
		return fmt.Errorf("create course %s: %w", course.Code, repository.ErrDuplicate)
	}
	m.next++
	course.ID = m.next
	course.CreatedAt = time.Now()
	copied := *course
	m.courses[course.Code] = &copied
	return nil
}

func (m *memoryCourses) GetByCode(_ context.Context, code string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[code]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (m *memoryCourses) GetByTeacherID(_ context.Context, teacherID int64) ([]*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Course
	for _, c := range m.courses {
		if c.TeacherID == teacherID {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryCourses) GetActive(_ context.Context, now time.Time) ([]*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Course
	for _, c := range m.courses {
		if !now.Before(c.StartsAt) && now.Before(c.EndsAt) {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryCourses) CodeExists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.courses[code]
	return ok, nil
}

// memoryAttendees повторяет уникальные индексы (course_id, national_id, slot_start)
// и (course_id, telegram_id, slot_start)
type memoryAttendees struct {
	mu        sync.Mutex
	attendees []*model.Attendee
}

func (m *memoryAttendees) Create(_ context.Context, attendee *model.Attendee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attendees {
		if a.CourseID != attendee.CourseID || !a.SlotStart.Equal(attendee.SlotStart) {
			continue
		}
		if a.NationalID == attendee.NationalID || a.TelegramID == attendee.TelegramID {
			return fmt.Errorf("create attendee: %w", repository.ErrDuplicate)
		}
	}
	attendee.CreatedAt = time.Now()
	copied := *attendee
	m.attendees = append(m.attendees, &copied)
	return nil
}

func (m *memoryAttendees) GetByCourseID(_ context.Context, courseID int64) ([]*model.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Attendee
	for _, a := range m.attendees {
		if a.CourseID == courseID {
			copied := *a
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryAttendees) CountBySlot(_ context.Context, courseID int64, slotStart time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.attendees {
		if a.CourseID == courseID && a.SlotStart.Equal(slotStart) {
			count++
		}
	}
	return count, nil
}

type tokenKey struct {
	telegramID int64
	code       string
}

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[tokenKey]string
	getErr error
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: make(map[tokenKey]string)}
}

func (m *memoryTokens) Get(_ context.Context, telegramID int64, courseCode string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.tokens[tokenKey{telegramID, courseCode}], nil
}

func (m *memoryTokens) Set(_ context.Context, telegramID int64, courseCode, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenKey{telegramID, courseCode}] = token
	return nil
}
