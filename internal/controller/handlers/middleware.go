package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/attendance_bot/internal/model"
	"github.com/Freeeeeet/attendance_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const msgInternalError = "❌ Произошла ошибка. Попробуйте позже."

// requireUser проверяет что пользователь существует
// Возвращает user и true если OK, nil и false если нет
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	user, err := h.userService.GetByTelegramID(ctx, telegramID)

	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, msgInternalError)
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return nil, false
	}

	return user, true
}

// requireTeacher проверяет что пользователь является учителем
func (h *Handlers) requireTeacher(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !user.IsTeacher {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только учителям.\n\nСтать учителем: /becometeacher")
		return nil, false
	}

	return user, true
}

// commandArgument возвращает текст после команды: "/status ABC-DEF-GHJ" -> "ABC-DEF-GHJ"
func commandArgument(text string) string {
	_, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(arg)
}

// errorText переводит ошибку сервиса в ответ пользователю
func errorText(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCourseCode):
		return "❌ Неверный формат кода. Код выглядит так: ABC-DEF-GHJ"
	case errors.Is(err, service.ErrCourseNotFound):
		return "❌ Курс с таким кодом не найден."
	case errors.Is(err, service.ErrOutsideSchedule):
		return "⏰ Сейчас у этого курса нет занятия."
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return "✅ Вы уже отмечены на этом занятии."
	case errors.Is(err, service.ErrForbidden):
		return "❌ Это не ваш курс."
	case errors.Is(err, service.ErrNotTeacher):
		return "❌ Эта команда доступна только учителям.\n\nСтать учителем: /becometeacher"
	case errors.Is(err, service.ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start для регистрации."
	case errors.Is(err, service.ErrInvalidInput):
		return "❌ Некорректные данные. Проверьте введённые значения."
	default:
		return msgInternalError
	}
}

// isExpectedError - ошибки, о которых достаточно сообщить пользователю
func isExpectedError(err error) bool {
	return errors.Is(err, service.ErrInvalidCourseCode) ||
		errors.Is(err, service.ErrCourseNotFound) ||
		errors.Is(err, service.ErrOutsideSchedule) ||
		errors.Is(err, service.ErrAlreadyCheckedIn) ||
		errors.Is(err, service.ErrForbidden) ||
		errors.Is(err, service.ErrNotTeacher) ||
		errors.Is(err, service.ErrUserNotFound) ||
		errors.Is(err, service.ErrInvalidInput)
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// replyServiceError логирует неожиданную ошибку и отвечает пользователю
func (h *Handlers) replyServiceError(ctx context.Context, b *bot.Bot, chatID int64, op string, err error) {
	if !isExpectedError(err) {
		h.logger.Error("Operation failed", zap.String("op", op), zap.Int64("chat_id", chatID), zap.Error(err))
	}
	h.sendError(ctx, b, chatID, errorText(err))
}
