package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/controller/handlers"
	"github.com/Freeeeeet/attendance_bot/internal/controller/state"
	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	courseService *service.CourseService,
	attendanceService *service.AttendanceService,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		userService,
		courseService,
		attendanceService,
		stateManager,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/checkin", bot.MatchTypePrefix, c.handlers.HandleCheckInStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, c.handlers.HandleStatus)

	// Команды для учителей
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/becometeacher", bot.MatchTypeExact, c.handlers.HandleBecomeTeacher)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newcourse", bot.MatchTypeExact, c.handlers.HandleNewCourseStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mycourses", bot.MatchTypeExact, c.handlers.HandleMyCourses)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/attendees", bot.MatchTypePrefix, c.handlers.HandleAttendees)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "checkin", Description: "📝 Отметиться на занятии"},
		{Command: "status", Description: "🟢 Идёт ли занятие курса"},
		{Command: "cancel", Description: "✖️ Отменить текущий диалог"},
		{Command: "becometeacher", Description: "🎓 Стать учителем"},
		{Command: "newcourse", Description: "➕ Создать курс (учитель)"},
		{Command: "mycourses", Description: "📚 Мои курсы (учитель)"},
		{Command: "attendees", Description: "📋 Отметившиеся (учитель)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// NotifyMeetingStarted сообщает учителю, что началось занятие курса
func (c *BotController) NotifyMeetingStarted(ctx context.Context, course *model.Course, slotStart time.Time) error {
	if course.TeacherTelegramID == 0 {
		return fmt.Errorf("course %s has no teacher chat", course.Code)
	}

	local := slotStart.Add(-time.Duration(course.UTCOffset) * time.Minute)
	text := fmt.Sprintf(
		"🔔 Началось занятие «%s» (%s).\n\n"+
			"Студенты отмечаются командой /checkin %s\n"+
			"Список отметившихся: /attendees %s",
		course.Title,
		local.Format("02.01.2006 15:04"),
		course.Code,
		course.Code,
	)

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: course.TeacherTelegramID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send meeting notification: %w", err)
	}

	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
