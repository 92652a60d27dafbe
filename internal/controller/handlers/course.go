package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/attendance_bot/internal/controller/state"
	"github.com/Freeeeeet/attendance_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleNewCourseStart обрабатывает команду /newcourse
func (h *Handlers) HandleNewCourseStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}

	h.stateManager.Start(user.TelegramID, state.StateCourseTitle)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"➕ Создание курса\n\n"+
			"Шаг 1/5. Введите название курса.\n\n"+
			"Отменить: /cancel")
}

func (h *Handlers) handleCourseTitle(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	title := strings.TrimSpace(update.Message.Text)

	if len([]rune(title)) < 3 || len([]rune(title)) > 100 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Название должно быть от 3 до 100 символов.")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyTitle, title)
	h.stateManager.SetState(telegramID, state.StateCourseDays)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"Шаг 2/5. В какие дни недели проходят занятия?\n\n"+
			"Например: пн ср пт")
}

func (h *Handlers) handleCourseDays(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	days, err := parseWeekdays(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось разобрать дни. Используйте: пн вт ср чт пт сб вс")
		return
	}

	encoded := make([]string, len(days))
	for i, day := range days {
		encoded[i] = strconv.Itoa(day)
	}

	h.stateManager.SetData(telegramID, state.KeyDays, strings.Join(encoded, ","))
	h.stateManager.SetState(telegramID, state.StateCourseTime)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"Шаг 3/5. Во сколько проходит занятие?\n\n"+
			"Формат: ЧЧ:ММ-ЧЧ:ММ, например 18:30-20:00")
}

func (h *Handlers) handleCourseTime(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	start, end, err := parseTimeRange(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Неверное время. Формат: ЧЧ:ММ-ЧЧ:ММ, например 18:30-20:00")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyStartTime, start)
	h.stateManager.SetData(telegramID, state.KeyEndTime, end)
	h.stateManager.SetState(telegramID, state.StateCourseOffset)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"Шаг 4/5. Ваш часовой пояс относительно UTC?\n\n"+
			"Например: +3 для Москвы, 0 для Лондона, -05:00 для Нью-Йорка")
}

func (h *Handlers) handleCourseOffset(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	offset, err := parseUTCOffset(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Неверный часовой пояс. Допустимо от -12 до +14, например +3 или +05:30")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyOffset, strconv.Itoa(offset))
	h.stateManager.SetState(telegramID, state.StateCoursePeriod)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"Шаг 5/5. Период курса?\n\n"+
			"Формат: ДД.ММ.ГГГГ-ДД.ММ.ГГГГ, например 01.09.2025-31.12.2025")
}

func (h *Handlers) handleCoursePeriod(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID

	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(update.Message.From.ID)
		return
	}

	in, err := h.courseInputFromDialog(user.TelegramID)
	if err != nil {
		h.logger.Warn("Course dialog data is incomplete", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		h.stateManager.ClearState(user.TelegramID)
		h.sendError(ctx, b, chatID, "❌ Данные диалога потеряны. Начните заново: /newcourse")
		return
	}

	in.StartsAt, in.EndsAt, err = parseDateRange(update.Message.Text, in.UTCOffset)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный период. Формат: ДД.ММ.ГГГГ-ДД.ММ.ГГГГ, дата окончания не раньше начала")
		return
	}

	course, err := h.courseService.CreateCourse(ctx, user.ID, in)
	h.stateManager.ClearState(user.TelegramID)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, "create_course", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"✅ Курс создан!\n\n%s\n\nСообщите код студентам: они отмечаются командой /checkin %s",
		FormatCourse(course),
		course.Code,
	))
}

// courseInputFromDialog собирает данные курса из ответов на предыдущих шагах
func (h *Handlers) courseInputFromDialog(telegramID int64) (service.CreateCourseInput, error) {
	var in service.CreateCourseInput

	title, ok := h.stateManager.GetData(telegramID, state.KeyTitle)
	if !ok {
		return in, fmt.Errorf("missing %s", state.KeyTitle)
	}
	daysText, ok := h.stateManager.GetData(telegramID, state.KeyDays)
	if !ok {
		return in, fmt.Errorf("missing %s", state.KeyDays)
	}
	start, ok := h.stateManager.GetData(telegramID, state.KeyStartTime)
	if !ok {
		return in, fmt.Errorf("missing %s", state.KeyStartTime)
	}
	end, ok := h.stateManager.GetData(telegramID, state.KeyEndTime)
	if !ok {
		return in, fmt.Errorf("missing %s", state.KeyEndTime)
	}
	offsetText, ok := h.stateManager.GetData(telegramID, state.KeyOffset)
	if !ok {
		return in, fmt.Errorf("missing %s", state.KeyOffset)
	}

	days, err := parseWeekdays(daysText)
	if err != nil {
		return in, err
	}
	offset, err := strconv.Atoi(offsetText)
	if err != nil {
		return in, fmt.Errorf("parse offset: %w", err)
	}

	in.Title = title
	in.Days = days
	in.StartTime = start
	in.EndTime = end
	in.UTCOffset = offset
	return in, nil
}

// HandleMyCourses обрабатывает команду /mycourses
func (h *Handlers) HandleMyCourses(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}

	courses, err := h.courseService.GetTeacherCourses(ctx, user.ID)
	if err != nil {
		h.replyServiceError(ctx, b, update.Message.Chat.ID, "teacher_courses", err)
		return
	}

	if len(courses) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📭 У вас пока нет курсов.\n\nСоздать курс: /newcourse")
		return
	}

	parts := make([]string, 0, len(courses))
	for _, course := range courses {
		parts = append(parts, FormatCourse(course))
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"📚 Ваши курсы:\n\n"+strings.Join(parts, "\n\n")+
			"\n\nСписок отметившихся: /attendees <код>")
}

// HandleAttendees обрабатывает команду /attendees <код>
func (h *Handlers) HandleAttendees(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	code := commandArgument(update.Message.Text)
	if code == "" {
		h.sendError(ctx, b, chatID, "❌ Укажите код курса: /attendees ABC-DEF-GHJ")
		return
	}

	course, attendees, err := h.courseService.GetAttendees(ctx, user.ID, code)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, "attendees", err)
		return
	}

	h.sendMessage(ctx, b, chatID, FormatAttendees(course, attendees))
}
