package schedule

import "time"

// WeekStart возвращает последнее воскресенье 00:00 UTC, не позже now
func WeekStart(now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}

// SlotStart возвращает канонический момент начала занятия t на неделе, содержащей now.
// Одинаков для любых моментов одной недели UTC и сдвигается ровно на 7 дней между неделями.
func SlotStart(t Tuple, now time.Time) time.Time {
	return WeekStart(now).Add(time.Duration(t.Start) * time.Minute)
}
