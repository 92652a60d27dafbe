package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/attendance_bot/internal/controller/state"
	"github.com/Freeeeeet/attendance_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	// Регистрируем пользователя
	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для отметки посещаемости занятий.\n\n"+
			"Для студентов:\n"+
			"/checkin - Отметиться на занятии\n\n"+
			"Для учителей:\n"+
			"/becometeacher - Стать учителем\n"+
			"/newcourse - Создать курс\n"+
			"/mycourses - Мои курсы\n\n"+
			"/help - Справка",
		registeredUser.FirstName,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"Для студентов:\n" +
		"/start - Начать работу с ботом\n" +
		"/checkin [код] - Отметиться на идущем занятии\n" +
		"/status <код> - Идёт ли сейчас занятие курса\n" +
		"/cancel - Отменить текущий диалог\n\n" +
		"Для учителей:\n" +
		"/becometeacher - Зарегистрироваться как учитель\n" +
		"/newcourse - Создать курс с расписанием\n" +
		"/mycourses - Мои курсы и их коды\n" +
		"/attendees <код> - Список отметившихся\n\n" +
		"Отметиться можно только во время занятия, один раз за занятие."

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleBecomeTeacher обрабатывает команду /becometeacher
func (h *Handlers) HandleBecomeTeacher(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if user.IsTeacher {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Вы уже учитель.\n\nСоздать курс: /newcourse")
		return
	}

	if err := h.userService.MakeTeacher(ctx, user.TelegramID); err != nil {
		h.replyServiceError(ctx, b, update.Message.Chat.ID, "make_teacher", err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎓 Теперь вы учитель!\n\n"+
			"/newcourse - Создать курс\n"+
			"/mycourses - Мои курсы")
}

// HandleStatus обрабатывает команду /status <код>
func (h *Handlers) HandleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	code := commandArgument(update.Message.Text)
	if code == "" {
		h.sendError(ctx, b, chatID, "❌ Укажите код курса: /status ABC-DEF-GHJ")
		return
	}

	occurrence, err := h.courseService.CurrentOccurrence(ctx, code)
	if errors.Is(err, service.ErrOutsideSchedule) {
		h.sendMessage(ctx, b, chatID, "⏰ Сейчас у этого курса нет занятия.")
		return
	}
	if err != nil {
		h.replyServiceError(ctx, b, chatID, "status", err)
		return
	}

	course := occurrence.Course
	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"🟢 Идёт занятие: %s\n🗓 %s (%s), %s\n👥 Отметились: %d\n\nОтметиться: /checkin %s",
		course.Title,
		FormatMeeting(occurrence.Meeting, course.UTCOffset),
		FormatOffset(course.UTCOffset),
		FormatDuration(occurrence.Meeting.Duration),
		occurrence.Attendees,
		course.Code,
	))
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	switch h.stateManager.GetState(update.Message.From.ID) {
	case state.StateCourseTitle:
		h.handleCourseTitle(ctx, b, update)
	case state.StateCourseDays:
		h.handleCourseDays(ctx, b, update)
	case state.StateCourseTime:
		h.handleCourseTime(ctx, b, update)
	case state.StateCourseOffset:
		h.handleCourseOffset(ctx, b, update)
	case state.StateCoursePeriod:
		h.handleCoursePeriod(ctx, b, update)
	case state.StateCheckInCode:
		h.handleCheckInCode(ctx, b, update)
	case state.StateCheckInName:
		h.handleCheckInName(ctx, b, update)
	case state.StateCheckInNationalID:
		h.handleCheckInNationalID(ctx, b, update)
	default:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🤔 Не понимаю. Используйте /help для списка команд.")
	}
}
