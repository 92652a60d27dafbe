package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/attendance"
	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const studentTelegramID int64 = 5005

type attendanceFixture struct {
	*courseFixture
	tokens  *memoryTokens
	service *AttendanceService
	course  *model.Course
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()

	cf := newCourseFixture(t)
	course, err := cf.service.CreateCourse(context.Background(), cf.teacher.ID, validCourseInput())
	require.NoError(t, err)

	f := &attendanceFixture{
		courseFixture: cf,
		tokens:        newMemoryTokens(),
		course:        course,
	}
	f.service = NewAttendanceService(cf.courses, cf.attendees, f.tokens, cf.clock.Now, zap.NewNop())
	return f
}

func (f *attendanceFixture) input() CheckInInput {
	return CheckInInput{
		TelegramID: studentTelegramID,
		Code:       f.course.Code,
		FirstName:  "Ivan",
		Surname:    "Petrov",
		NationalID: "AB123456",
	}
}

func (f *attendanceFixture) studentKey() tokenKey {
	return tokenKey{telegramID: studentTelegramID, code: f.course.Code}
}

func TestCheckIn(t *testing.T) {
	f := newAttendanceFixture(t)

	result, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)

	slot := time.Date(2024, time.January, 8, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, f.course.ID, result.Attendee.CourseID)
	assert.True(t, slot.Equal(result.Attendee.SlotStart))
	assert.Equal(t, attendance.NewToken(f.course.Code, slot), result.Token)
	assert.Equal(t, result.Token, f.tokens.tokens[f.studentKey()])

	count, err := f.attendees.CountBySlot(context.Background(), f.course.ID, slot)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCheckInTwiceSameMeeting(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)

	f.clock.now = f.clock.now.Add(20 * time.Minute)
	_, err = f.service.CheckIn(context.Background(), f.input())
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	attendees, err := f.attendees.GetByCourseID(context.Background(), f.course.ID)
	require.NoError(t, err)
	assert.Len(t, attendees, 1)
}

func TestCheckInLostTokenStillRejectedByStore(t *testing.T) {
	f := newAttendanceFixture(t)

	first, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)

	delete(f.tokens.tokens, f.studentKey())

	_, err = f.service.CheckIn(context.Background(), f.input())
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Equal(t, first.Token, f.tokens.tokens[f.studentKey()], "token is restored")
}

func TestCheckInMalformedTokenFailsOpen(t *testing.T) {
	f := newAttendanceFixture(t)
	f.tokens.tokens[f.studentKey()] = "garbage-without-separator"

	result, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, result.Token, f.tokens.tokens[f.studentKey()])
}

func TestCheckInTokenStoreUnavailable(t *testing.T) {
	f := newAttendanceFixture(t)
	f.tokens.getErr = errors.New("redis: connection refused")

	_, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)
}

func TestCheckInNextWeek(t *testing.T) {
	f := newAttendanceFixture(t)

	first, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)

	f.clock.now = f.clock.now.AddDate(0, 0, 7)
	second, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, second.Attendee.SlotStart.Sub(first.Attendee.SlotStart))
	assert.NotEqual(t, first.Token, second.Token)
}

func TestCheckInOtherCourseToken(t *testing.T) {
	f := newAttendanceFixture(t)
	f.tokens.tokens[f.studentKey()] = attendance.NewToken("ZZZ-ZZZ-ZZZ", time.Date(2024, time.January, 8, 19, 0, 0, 0, time.UTC))

	_, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)
}

func TestCheckInOutsideSchedule(t *testing.T) {
	f := newAttendanceFixture(t)

	for _, now := range []time.Time{
		mondayEvening.Add(2 * time.Hour),
		mondayEvening.AddDate(0, 0, 1),
		time.Date(2023, time.December, 25, 19, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 4, 19, 30, 0, 0, time.UTC),
	} {
		f.clock.now = now
		_, err := f.service.CheckIn(context.Background(), f.input())
		assert.ErrorIs(t, err, ErrOutsideSchedule, "now=%s", now)
	}

	assert.Empty(t, f.tokens.tokens)
}

func TestCheckInCourseLookup(t *testing.T) {
	f := newAttendanceFixture(t)

	in := f.input()
	in.Code = "bad"
	_, err := f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidCourseCode)

	in.Code = "000-000-000"
	_, err = f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	in.Code = strings.ToLower(f.course.Code)
	_, err = f.service.CheckIn(context.Background(), in)
	assert.NoError(t, err)
}

func TestCheckInInvalidStudent(t *testing.T) {
	f := newAttendanceFixture(t)

	in := f.input()
	in.NationalID = "12-34"
	_, err := f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidNationalID)

	in = f.input()
	in.Surname = "   "
	_, err = f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidName)

	in = f.input()
	in.FirstName = strings.Repeat("я", 101)
	_, err = f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.NotErrorIs(t, err, ErrInvalidNationalID)

	// имя проверяется раньше документа
	in.NationalID = "12-34"
	_, err = f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCheckInOtherCourseKeepsFirstCourseToken(t *testing.T) {
	f := newAttendanceFixture(t)

	other, err := f.courseFixture.service.CreateCourse(context.Background(), f.teacher.ID, validCourseInput())
	require.NoError(t, err)
	require.NotEqual(t, f.course.Code, other.Code)

	_, err = f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)

	in := f.input()
	in.Code = other.Code
	_, err = f.service.CheckIn(context.Background(), in)
	require.NoError(t, err)

	in = f.input()
	in.NationalID = "ZZ999999"
	_, err = f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	attendees, err := f.attendees.GetByCourseID(context.Background(), f.course.ID)
	require.NoError(t, err)
	assert.Len(t, attendees, 1)
}

func TestCheckInSameAccountOtherDocumentRejectedByStore(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.service.CheckIn(context.Background(), f.input())
	require.NoError(t, err)

	delete(f.tokens.tokens, f.studentKey())

	in := f.input()
	in.NationalID = "ZZ999999"
	_, err = f.service.CheckIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	attendees, err := f.attendees.GetByCourseID(context.Background(), f.course.ID)
	require.NoError(t, err)
	assert.Len(t, attendees, 1)
}
