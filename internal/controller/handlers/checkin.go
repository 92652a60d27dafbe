package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/attendance_bot/internal/controller/state"
	"github.com/Freeeeeet/attendance_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleCheckInStart обрабатывает команду /checkin [код]
func (h *Handlers) HandleCheckInStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	h.stateManager.Start(user.TelegramID, state.StateCheckInCode)

	code := commandArgument(update.Message.Text)
	if code == "" {
		h.sendMessage(ctx, b, chatID, "📝 Отметка на занятии\n\nВведите код курса (например ABC-DEF-GHJ).\n\nОтменить: /cancel")
		return
	}

	h.acceptCheckInCode(ctx, b, update, user.TelegramID, code)
}

func (h *Handlers) handleCheckInCode(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.acceptCheckInCode(ctx, b, update, update.Message.From.ID, update.Message.Text)
}

// acceptCheckInCode проверяет, что у курса идёт занятие, до того как спрашивать данные студента
func (h *Handlers) acceptCheckInCode(ctx context.Context, b *bot.Bot, update *models.Update, telegramID int64, code string) {
	chatID := update.Message.Chat.ID

	occurrence, err := h.courseService.CurrentOccurrence(ctx, code)
	switch {
	case errors.Is(err, service.ErrInvalidCourseCode), errors.Is(err, service.ErrCourseNotFound):
		h.sendError(ctx, b, chatID, errorText(err)+"\n\nВведите код ещё раз или /cancel")
		return
	case err != nil:
		h.stateManager.ClearState(telegramID)
		h.replyServiceError(ctx, b, chatID, "checkin_code", err)
		return
	}

	h.stateManager.SetData(telegramID, state.KeyCode, occurrence.Course.Code)
	h.stateManager.SetState(telegramID, state.StateCheckInName)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"📘 %s\n🗓 %s\n\nВведите имя и фамилию через пробел.",
		occurrence.Course.Title,
		FormatMeeting(occurrence.Meeting, occurrence.Course.UTCOffset),
	))
}

func (h *Handlers) handleCheckInName(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	firstName, surname, ok := splitFullName(update.Message.Text)
	if !ok {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Введите имя и фамилию через пробел, например: Иван Петров")
		return
	}
	if !validNameLength(firstName) || !validNameLength(surname) {
		h.sendError(ctx, b, update.Message.Chat.ID, fmt.Sprintf("❌ Имя и фамилия должны быть не длиннее %d символов.", maxNameLength))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyFirstName, firstName)
	h.stateManager.SetData(telegramID, state.KeySurname, surname)
	h.stateManager.SetState(telegramID, state.StateCheckInNationalID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🪪 Введите номер документа (буквы и цифры).")
}

func (h *Handlers) handleCheckInNationalID(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	code, _ := h.stateManager.GetData(telegramID, state.KeyCode)
	firstName, _ := h.stateManager.GetData(telegramID, state.KeyFirstName)
	surname, _ := h.stateManager.GetData(telegramID, state.KeySurname)

	result, err := h.attendanceService.CheckIn(ctx, service.CheckInInput{
		TelegramID: telegramID,
		Code:       code,
		FirstName:  firstName,
		Surname:    surname,
		NationalID: update.Message.Text,
	})
	if errors.Is(err, service.ErrInvalidName) {
		h.stateManager.SetState(telegramID, state.StateCheckInName)
		h.sendError(ctx, b, chatID, fmt.Sprintf("❌ Имя и фамилия должны быть не длиннее %d символов. Введите имя и фамилию ещё раз.", maxNameLength))
		return
	}
	if errors.Is(err, service.ErrInvalidNationalID) {
		h.sendError(ctx, b, chatID, "❌ Номер документа: от 4 до 32 латинских букв и цифр. Попробуйте ещё раз или /cancel")
		return
	}

	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, "checkin", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"✅ %s %s, вы отмечены на занятии курса «%s».",
		result.Attendee.FirstName,
		result.Attendee.Surname,
		result.Course.Title,
	))
}

// maxNameLength совпадает с ограничением max=100 в service.CheckInInput
const maxNameLength = 100

func validNameLength(name string) bool {
	return utf8.RuneCountInString(name) <= maxNameLength
}

// splitFullName делит "Имя Фамилия"; всё после первого слова считается фамилией
func splitFullName(text string) (string, string, bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}
