package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Создание курса учителем
	StateCourseTitle  UserState = "course_title"
	StateCourseDays   UserState = "course_days"
	StateCourseTime   UserState = "course_time"
	StateCourseOffset UserState = "course_offset"
	StateCoursePeriod UserState = "course_period"

	// Отметка студента
	StateCheckInCode       UserState = "checkin_code"
	StateCheckInName       UserState = "checkin_name"
	StateCheckInNationalID UserState = "checkin_national_id"
)

// Ключи данных диалога
const (
	KeyTitle     = "title"
	KeyDays      = "days"
	KeyStartTime = "start_time"
	KeyEndTime   = "end_time"
	KeyOffset    = "utc_offset"
	KeyCode      = "code"
	KeyFirstName = "first_name"
	KeySurname   = "surname"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]string
}
