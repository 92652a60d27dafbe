package schedule

import (
	"encoding/json"
	"fmt"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
	MinutesPerWeek = 7 * MinutesPerDay // 10080
)

// Tuple описывает одно еженедельное занятие в минутах от воскресенья 00:00 UTC.
// Start+Duration может выходить за MinutesPerWeek - занятие переходит на следующую неделю.
type Tuple struct {
	Start    int `json:"start"`
	Duration int `json:"duration"`
}

// End возвращает минуту окончания (может быть больше MinutesPerWeek)
func (t Tuple) End() int {
	return t.Start + t.Duration
}

// Wraps сообщает, переходит ли занятие через границу недели
func (t Tuple) Wraps() bool {
	return t.End() > MinutesPerWeek
}

// IsValid проверяет инварианты кортежа
func (t Tuple) IsValid() bool {
	return t.Start >= 0 && t.Start < MinutesPerWeek && t.Duration > 0
}

// MarshalJSON сохраняет кортеж как пару [start, duration]
func (t Tuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{t.Start, t.Duration})
}

// UnmarshalJSON читает пару [start, duration]
func (t *Tuple) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode schedule tuple: %w", err)
	}
	t.Start, t.Duration = pair[0], pair[1]
	return nil
}

// Schedule - упорядоченный список занятий курса.
// Порядок совпадает с порядком выбора дней и используется только для выбора первого совпадения.
type Schedule []Tuple

// Validate проверяет, что расписание можно сохранить
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return &ValidationError{Field: "schedule", Reason: "no meetings"}
	}
	for i, t := range s {
		if !t.IsValid() {
			return &ValidationError{
				Field:  "schedule",
				Reason: fmt.Sprintf("tuple %d is malformed (start=%d, duration=%d)", i, t.Start, t.Duration),
			}
		}
	}
	return nil
}
