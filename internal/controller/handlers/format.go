package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/schedule"
)

var weekdayShortNames = []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// GetWeekdayShort возвращает короткое название дня недели
func GetWeekdayShort(weekday int) string {
	if weekday >= 0 && weekday < len(weekdayShortNames) {
		return weekdayShortNames[weekday]
	}
	return "?"
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// FormatOffset показывает смещение (local = UTC - offset) как "UTC+03:00"
func FormatOffset(offsetMinutes int) string {
	east := -offsetMinutes
	sign := "+"
	if east < 0 {
		sign = "-"
		east = -east
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, east/60, east%60)
}

// FormatMeeting показывает занятие в локальном времени учителя: "Пн 22:00-23:30"
func FormatMeeting(t schedule.Tuple, offsetMinutes int) string {
	localStart := ((t.Start-offsetMinutes)%schedule.MinutesPerWeek + schedule.MinutesPerWeek) % schedule.MinutesPerWeek
	localEnd := localStart + t.Duration

	day := localStart / schedule.MinutesPerDay
	return fmt.Sprintf("%s %s-%s",
		GetWeekdayShort(day),
		formatClock(localStart%schedule.MinutesPerDay),
		formatClock(localEnd%schedule.MinutesPerDay),
	)
}

// FormatSchedule перечисляет занятия курса
func FormatSchedule(s schedule.Schedule, offsetMinutes int) string {
	parts := make([]string, 0, len(s))
	for _, t := range s {
		parts = append(parts, FormatMeeting(t, offsetMinutes))
	}
	return strings.Join(parts, ", ")
}

// FormatCourse форматирует курс для списка учителя
func FormatCourse(course *model.Course) string {
	localShift := -time.Duration(course.UTCOffset) * time.Minute
	lastDay := course.EndsAt.Add(localShift).AddDate(0, 0, -1)

	return fmt.Sprintf(
		"📘 %s\n"+
			"🔑 Код: %s\n"+
			"🗓 %s (%s)\n"+
			"📅 %s - %s",
		course.Title,
		course.Code,
		FormatSchedule(course.Schedule, course.UTCOffset),
		FormatOffset(course.UTCOffset),
		course.StartsAt.Add(localShift).Format(dateLayout),
		lastDay.Format(dateLayout),
	)
}

// FormatAttendees группирует отметки по занятиям
func FormatAttendees(course *model.Course, attendees []*model.Attendee) string {
	if len(attendees) == 0 {
		return fmt.Sprintf("📋 %s (%s)\n\nОтметок пока нет.", course.Title, course.Code)
	}

	localShift := -time.Duration(course.UTCOffset) * time.Minute

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %s (%s)\n", course.Title, course.Code)

	var currentSlot time.Time
	for _, a := range attendees {
		if !a.SlotStart.Equal(currentSlot) {
			currentSlot = a.SlotStart
			fmt.Fprintf(&sb, "\n🗓 %s\n", a.SlotStart.Add(localShift).Format("02.01.2006 15:04"))
		}
		fmt.Fprintf(&sb, "• %s %s (%s)\n", a.FirstName, a.Surname, a.NationalID)
	}

	return sb.String()
}

func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
