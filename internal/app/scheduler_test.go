package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/schedule"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type staticCourses struct {
	courses []*model.Course
	err     error
}

func (s *staticCourses) GetActiveCourses(context.Context) ([]*model.Course, error) {
	return s.courses, s.err
}

type recordingNotifier struct {
	slots []time.Time
	err   error
}

func (n *recordingNotifier) NotifyMeetingStarted(_ context.Context, _ *model.Course, slotStart time.Time) error {
	if n.err != nil {
		return n.err
	}
	n.slots = append(n.slots, slotStart)
	return nil
}

func TestSchedulerAnnouncesOncePerMeeting(t *testing.T) {
	course := &model.Course{
		ID:       1,
		Code:     "ABC-123-XYZ",
		Schedule: schedule.Schedule{{Start: 2580, Duration: 90}}, // понедельник 19:00 UTC
		StartsAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, time.January, 8, 19, 5, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	s := NewScheduler(&staticCourses{courses: []*model.Course{course}}, notifier, time.Minute,
		func() time.Time { return now }, zap.NewNop())

	s.announce(context.Background())
	now = now.Add(30 * time.Minute)
	s.announce(context.Background())
	assert.Len(t, notifier.slots, 1)

	// занятие закончилось
	now = now.Add(2 * time.Hour)
	s.announce(context.Background())
	assert.Empty(t, s.announced)

	// следующая неделя
	now = time.Date(2024, time.January, 15, 19, 1, 0, 0, time.UTC)
	s.announce(context.Background())
	assert.Len(t, notifier.slots, 2)
	assert.Equal(t, 7*24*time.Hour, notifier.slots[1].Sub(notifier.slots[0]))
}

func TestSchedulerRetriesFailedAnnouncement(t *testing.T) {
	course := &model.Course{
		ID:       1,
		Schedule: schedule.Schedule{{Start: 0, Duration: schedule.MinutesPerWeek}},
		StartsAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	notifier := &recordingNotifier{err: errors.New("telegram is down")}
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	s := NewScheduler(&staticCourses{courses: []*model.Course{course}}, notifier, time.Minute,
		func() time.Time { return now }, zap.NewNop())

	s.announce(context.Background())
	assert.Empty(t, s.announced)

	notifier.err = nil
	s.announce(context.Background())
	assert.Len(t, notifier.slots, 1)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(&staticCourses{err: errors.New("db down")}, &recordingNotifier{}, time.Hour,
		time.Now, zap.NewNop())

	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
