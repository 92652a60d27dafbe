package schedule

import "fmt"

// ValidationError - некорректные или вырожденные входные данные расписания
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
