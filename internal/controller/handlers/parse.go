package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/schedule"
)

const (
	dateLayout = "02.01.2006"
	// MaxOffsetMinutes - самые дальние пояса UTC-12 и UTC+14
	MaxOffsetMinutes = 14 * 60
)

var weekdayAliases = map[string]int{
	"вс": 0, "пн": 1, "вт": 2, "ср": 3, "чт": 4, "пт": 5, "сб": 6,
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseWeekdays разбирает список дней: "пн ср пт", "mon,wed" или "1,3,5" (0 = воскресенье).
// Порядок сохраняется, повторы отбрасываются.
func parseWeekdays(text string) ([]int, error) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no weekdays")
	}

	seen := make(map[int]bool, len(fields))
	days := make([]int, 0, len(fields))
	for _, field := range fields {
		day, ok := weekdayAliases[field]
		if !ok {
			n, err := strconv.Atoi(field)
			if err != nil || n < 0 || n > 6 {
				return nil, fmt.Errorf("unknown weekday %q", field)
			}
			day = n
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}

	return days, nil
}

// parseTimeRange разбирает "ЧЧ:ММ-ЧЧ:ММ"
func parseTimeRange(text string) (string, string, error) {
	text = strings.NewReplacer("\u2013", "-", "\u2014", "-", " ", "").Replace(text)
	start, end, found := strings.Cut(text, "-")
	if !found {
		return "", "", fmt.Errorf("expected HH:MM-HH:MM")
	}

	if _, err := schedule.ParseClock(start); err != nil {
		return "", "", err
	}
	if _, err := schedule.ParseClock(end); err != nil {
		return "", "", err
	}
	if start == end {
		return "", "", fmt.Errorf("meeting has zero length")
	}

	return start, end, nil
}

// parseUTCOffset разбирает пояс вида "+3", "-05:30", "UTC+3" и возвращает
// смещение в минутах по соглашению local = UTC - offset (UTC+3 -> -180)
func parseUTCOffset(text string) (int, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	text = strings.TrimPrefix(text, "UTC")
	text = strings.TrimPrefix(text, "GMT")
	if text == "" || text == "0" {
		return 0, nil
	}

	sign := 1
	switch text[0] {
	case '+':
		text = text[1:]
	case '-':
		sign = -1
		text = text[1:]
	}

	hoursText, minutesText, hasMinutes := strings.Cut(text, ":")
	hours, err := strconv.Atoi(hoursText)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid offset hours %q", hoursText)
	}

	minutes := 0
	if hasMinutes {
		minutes, err = strconv.Atoi(minutesText)
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, fmt.Errorf("invalid offset minutes %q", minutesText)
		}
	}

	east := sign * (hours*60 + minutes)
	if east < -12*60 || east > MaxOffsetMinutes {
		return 0, fmt.Errorf("offset %s out of range", text)
	}

	return -east, nil
}

// parseDateRange разбирает "ДД.ММ.ГГГГ-ДД.ММ.ГГГГ" в локальных датах учителя.
// Последний день входит в курс: конец - полночь следующего дня (не включительно).
func parseDateRange(text string, offsetMinutes int) (time.Time, time.Time, error) {
	text = strings.NewReplacer("\u2013", "-", "\u2014", "-", " ", "").Replace(text)
	first, last, found := strings.Cut(text, "-")
	if !found {
		return time.Time{}, time.Time{}, fmt.Errorf("expected DD.MM.YYYY-DD.MM.YYYY")
	}

	startDate, err := time.Parse(dateLayout, first)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	lastDate, err := time.Parse(dateLayout, last)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}

	// local = UTC - offset, значит UTC = local + offset
	shift := time.Duration(offsetMinutes) * time.Minute
	start := startDate.Add(shift)
	end := lastDate.AddDate(0, 0, 1).Add(shift)

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date is before start date")
	}

	return start, end, nil
}
