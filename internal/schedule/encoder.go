package schedule

import (
	"fmt"
	"strconv"
)

// ParseClock разбирает локальное время "HH:MM" и возвращает минуты от полуночи
func ParseClock(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("%q is not HH:MM", value)}
	}

	hours, err := strconv.Atoi(value[:2])
	if err != nil || hours < 0 || hours > 23 {
		return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("%q has invalid hours", value)}
	}

	minutes, err := strconv.Atoi(value[3:])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("%q has invalid minutes", value)}
	}

	return hours*MinutesPerHour + minutes, nil
}

// Encode превращает локальные дни недели и время занятия в расписание в минутах UTC.
// days: 0 = Sunday, 6 = Saturday.
// offsetMinutes: насколько локальное время отстаёт от UTC (local = UTC - offset),
// например -180 для UTC+3.
func Encode(days []int, startLocal, endLocal string, offsetMinutes int) (Schedule, error) {
	if len(days) == 0 {
		return nil, &ValidationError{Field: "days", Reason: "no weekdays selected"}
	}

	startClock, err := ParseClock(startLocal)
	if err != nil {
		return nil, err
	}
	endClock, err := ParseClock(endLocal)
	if err != nil {
		return nil, err
	}
	// Окончание раньше начала - занятие заканчивается на следующий день
	if endClock < startClock {
		endClock += MinutesPerDay
	}

	result := make(Schedule, 0, len(days))
	for _, day := range days {
		if day < 0 || day > 6 {
			return nil, &ValidationError{Field: "days", Reason: fmt.Sprintf("weekday %d out of range 0..6", day)}
		}

		utcStart := normalize(day*MinutesPerDay + startClock + offsetMinutes)
		utcEnd := normalize(day*MinutesPerDay + endClock + offsetMinutes)
		if utcStart == utcEnd {
			return nil, &ValidationError{Field: "time", Reason: "meeting has zero length"}
		}

		// Занятие переходит через границу недели UTC
		duration := utcEnd - utcStart
		if duration < 0 {
			duration += MinutesPerWeek
		}

		result = append(result, Tuple{Start: utcStart, Duration: duration})
	}

	return result, nil
}

// normalize приводит минуту к диапазону [0, MinutesPerWeek)
func normalize(minute int) int {
	minute %= MinutesPerWeek
	if minute < 0 {
		minute += MinutesPerWeek
	}
	return minute
}
