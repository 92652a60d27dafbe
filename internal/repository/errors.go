package repository

import "errors"

// ErrDuplicate - запись нарушает уникальное ограничение
var ErrDuplicate = errors.New("duplicate record")
