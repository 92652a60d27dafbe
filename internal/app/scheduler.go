package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/schedule"
	"go.uber.org/zap"
)

// CourseSource отдаёт курсы, идущие в текущем периоде
type CourseSource interface {
	GetActiveCourses(ctx context.Context) ([]*model.Course, error)
}

// Notifier сообщает учителю, что началось занятие
type Notifier interface {
	NotifyMeetingStarted(ctx context.Context, course *model.Course, slotStart time.Time) error
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	courses  CourseSource
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	// announced: course_id -> начало последнего объявленного занятия
	announced map[int64]time.Time
	stopOnce  sync.Once
	stopChan  chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(courses CourseSource, notifier Notifier, interval time.Duration, now func() time.Time, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		courses:   courses,
		notifier:  notifier,
		interval:  interval,
		now:       now,
		logger:    logger,
		announced: make(map[int64]time.Time),
		stopChan:  make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	go s.runAnnouncementTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
}

// runAnnouncementTask периодически ищет начавшиеся занятия
func (s *Scheduler) runAnnouncementTask(ctx context.Context) {
	s.announce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.announce(ctx)
		case <-s.stopChan:
			s.logger.Info("Announcement task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Announcement task cancelled")
			return
		}
	}
}

// announce уведомляет учителей о занятиях, которые ещё не объявлялись на этой неделе
func (s *Scheduler) announce(ctx context.Context) {
	courses, err := s.courses.GetActiveCourses(ctx)
	if err != nil {
		s.logger.Error("Failed to load active courses", zap.Error(err))
		return
	}

	now := s.now().UTC()
	running := make(map[int64]struct{}, len(courses))

	for _, course := range courses {
		meeting, ok := course.CurrentMeeting(now)
		if !ok {
			continue
		}
		running[course.ID] = struct{}{}

		slot := schedule.SlotStart(meeting, now)
		if last, seen := s.announced[course.ID]; seen && last.Equal(slot) {
			continue
		}

		if err := s.notifier.NotifyMeetingStarted(ctx, course, slot); err != nil {
			s.logger.Error("Failed to announce meeting",
				zap.Int64("course_id", course.ID),
				zap.String("code", course.Code),
				zap.Error(err))
			continue
		}

		s.announced[course.ID] = slot
		s.logger.Info("Meeting announced",
			zap.Int64("course_id", course.ID),
			zap.String("code", course.Code),
			zap.Time("slot_start", slot))
	}

	// Забываем курсы без идущего занятия
	for courseID := range s.announced {
		if _, ok := running[courseID]; !ok {
			delete(s.announced, courseID)
		}
	}
}
