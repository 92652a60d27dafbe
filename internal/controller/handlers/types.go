package handlers

import (
	"github.com/Freeeeeet/attendance_bot/internal/controller/state"
	"github.com/Freeeeeet/attendance_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService       *service.UserService
	courseService     *service.CourseService
	attendanceService *service.AttendanceService
	stateManager      *state.Manager
	logger            *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	courseService *service.CourseService,
	attendanceService *service.AttendanceService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:       userService,
		courseService:     courseService,
		attendanceService: attendanceService,
		stateManager:      stateManager,
		logger:            logger,
	}
}
