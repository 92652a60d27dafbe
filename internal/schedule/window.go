package schedule

import "time"

// MinuteOfWeek возвращает минуту недели (от воскресенья 00:00 UTC) для момента t
func MinuteOfWeek(t time.Time) int {
	t = t.UTC()
	return int(t.Weekday())*MinutesPerDay + t.Hour()*MinutesPerHour + t.Minute()
}

// Evaluate ищет занятие, идущее в момент now.
// Курс активен в полуинтервале [start, end). Пересекающиеся занятия не сливаются:
// возвращается первое подходящее в порядке хранения.
func Evaluate(s Schedule, start, end, now time.Time) (Tuple, bool) {
	if now.Before(start) || !now.Before(end) {
		return Tuple{}, false
	}

	nowMinutes := MinuteOfWeek(now)

	for _, t := range s {
		if t.Duration <= 0 {
			continue
		}

		if !t.Wraps() {
			if t.Start <= nowMinutes && nowMinutes <= t.End() {
				return t, true
			}
			continue
		}

		if nowMinutes >= t.Start || nowMinutes <= t.End()-MinutesPerWeek {
			return t, true
		}
	}

	return Tuple{}, false
}
