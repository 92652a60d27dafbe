package attendance

import (
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/schedule"
)

const (
	tokenSeparator = "|"
	// SlotLayout - сортируемый текстовый формат момента начала занятия (всегда UTC)
	SlotLayout = "2006-01-02T15:04:05Z"
	// TokenLifetime - токен действует до занятия следующей недели
	TokenLifetime = 7 * 24 * time.Hour
)

var ErrMalformedToken = errors.New("malformed attendance token")

// Decision - результат проверки отметки
type Decision struct {
	Allow bool
	// Token - токен текущего занятия, который клиент должен сохранить
	Token string
	Slot  time.Time
}

// NewToken собирает токен "{courseCode}|{slotStart}"
func NewToken(courseCode string, slot time.Time) string {
	return courseCode + tokenSeparator + slot.UTC().Format(SlotLayout)
}

// ParseToken разбирает токен на код курса и момент занятия
func ParseToken(token string) (string, time.Time, error) {
	code, rawSlot, found := strings.Cut(token, tokenSeparator)
	if !found || code == "" {
		return "", time.Time{}, ErrMalformedToken
	}

	slot, err := time.Parse(SlotLayout, rawSlot)
	if err != nil {
		return "", time.Time{}, ErrMalformedToken
	}

	return code, slot, nil
}

// Validate решает, можно ли отметиться на занятии matched по токену клиента.
// matched должен быть результатом успешного schedule.Evaluate.
// Отсутствующий или испорченный токен считается отсутствием прошлой отметки:
// токен хранится у клиента и не является границей безопасности,
// повторные отметки отсекает уникальный индекс в БД.
func Validate(token, courseCode string, matched schedule.Tuple, now time.Time) Decision {
	currentSlot := schedule.SlotStart(matched, now)
	decision := Decision{
		Allow: true,
		Token: NewToken(courseCode, currentSlot),
		Slot:  currentSlot,
	}

	if token == "" {
		return decision
	}

	storedCode, storedSlot, err := ParseToken(token)
	if err != nil {
		return decision
	}

	if storedCode == courseCode && storedSlot.Equal(currentSlot) {
		decision.Allow = false
	}

	return decision
}
