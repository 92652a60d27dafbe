package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotTeacher        = errors.New("user is not a teacher")
	ErrInvalidCourseCode = errors.New("invalid course code")
	ErrCourseNotFound    = errors.New("course not found")
	ErrForbidden         = errors.New("course belongs to another teacher")
	// ErrOutsideSchedule - сейчас нет занятия, это не сбой
	ErrOutsideSchedule  = errors.New("no meeting is running now")
	ErrAlreadyCheckedIn = errors.New("already checked in for this meeting")

	// Уточнения ErrInvalidInput при отметке: на каком шаге диалога ошибка
	ErrInvalidName       = fmt.Errorf("%w: name", ErrInvalidInput)
	ErrInvalidNationalID = fmt.Errorf("%w: national id", ErrInvalidInput)
)
