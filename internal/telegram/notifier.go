// README: Admin notifications for submitted bookings and decision messages for guests.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/faq"
	"secrethouse/internal/modules/pricing"
	"secrethouse/internal/types"
)

const (
	actionApprove = "approve"
	actionReject  = "reject"
)

func reviewData(action string, id types.ID) string {
	return action + ":" + string(id)
}

func parseReviewData(data string) (string, types.ID, bool) {
	action, ref, ok := strings.Cut(data, ":")
	if !ok || ref == "" {
		return "", "", false
	}
	if action != actionApprove && action != actionReject {
		return "", "", false
	}
	return action, types.ID(ref), true
}

func statusLabel(s booking.Status) string {
	switch s {
	case booking.StatusApproved:
		return "✅ Подтверждено"
	case booking.StatusRejected:
		return "❌ Отклонено"
	case booking.StatusCancelled:
		return "🚫 Отменено"
	case booking.StatusPending:
		return "⏳ Ожидает проверки"
	}
	return string(s)
}

// AdminNotifier implements booking.Notifier over Telegram. New bookings go
// to the admin chat with review buttons; decisions go back to the guest when
// the conversation is a Telegram chat.
type AdminNotifier struct {
	tg          telegramClient
	adminChatID int64
	logger      *zap.Logger
}

func (n *AdminNotifier) NotifyNewBooking(ctx context.Context, r *booking.Record) error {
	if n.adminChatID == 0 {
		n.logger.Warn("admin chat not configured; booking not announced", zap.String("booking_id", string(r.ID)))
		return nil
	}
	msg := tgbotapi.NewMessage(n.adminChatID, bookingText(r))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", reviewData(actionApprove, r.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", reviewData(actionReject, r.ID)),
		),
	)
	if _, err := n.tg.Send(msg); err != nil {
		return fmt.Errorf("send booking to admin: %w", err)
	}

	if r.Proof.FileID == "" {
		return nil
	}
	caption := "Подтверждение оплаты по брони " + string(r.ID)
	var file tgbotapi.Chattable
	if r.Proof.FileType == "photo" {
		p := tgbotapi.NewPhoto(n.adminChatID, tgbotapi.FileID(r.Proof.FileID))
		p.Caption = caption
		file = p
	} else {
		d := tgbotapi.NewDocument(n.adminChatID, tgbotapi.FileID(r.Proof.FileID))
		d.Caption = caption
		file = d
	}
	if _, err := n.tg.Send(file); err != nil {
		return fmt.Errorf("send payment proof to admin: %w", err)
	}
	return nil
}

func (n *AdminNotifier) NotifyDecision(ctx context.Context, r *booking.Record, actorID string) error {
	chatID, err := strconv.ParseInt(r.ConversationID, 10, 64)
	if err != nil {
		// not a Telegram conversation
		return nil
	}
	var text string
	switch r.Status {
	case booking.StatusApproved:
		text = fmt.Sprintf("🎉 Ваше бронирование %s подтверждено! Ждём вас в Secret House. Детали заезда администратор пришлёт отдельно.", r.ID)
	case booking.StatusRejected:
		text = fmt.Sprintf("К сожалению, бронирование %s не подтверждено. Свяжитесь с администратором %s.", r.ID, faq.AdminContact)
	case booking.StatusCancelled:
		text = fmt.Sprintf("Бронирование %s отменено. По вопросам пишите администратору %s.", r.ID, faq.AdminContact)
	default:
		return nil
	}
	if _, err := n.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send decision to guest: %w", err)
	}
	return nil
}

func bookingText(r *booking.Record) string {
	c := r.Context
	var sb strings.Builder
	fmt.Fprintf(&sb, "🆕 Новая бронь %s\n\n", r.ID)
	fmt.Fprintf(&sb, "Тариф: %s\n", c.TariffName())
	fmt.Fprintf(&sb, "Заезд: %s %s\n", c.StartDate, c.StartTime)
	fmt.Fprintf(&sb, "Выезд: %s %s\n", c.FinishDate, c.FinishTime)
	if c.NumberGuests > 0 {
		fmt.Fprintf(&sb, "Гостей: %d\n", c.NumberGuests)
	}
	if extras := extrasText(c); extras != "" {
		fmt.Fprintf(&sb, "Дополнительно: %s\n", extras)
	}
	fmt.Fprintf(&sb, "Контакт: %s\n", c.Contact)
	if c.Comment.Text != "" {
		fmt.Fprintf(&sb, "Комментарий: %s\n", c.Comment.Text)
	}
	if !r.Total.IsZero() {
		fmt.Fprintf(&sb, "Сумма: %s руб.\n", pricing.FormatAmount(r.Total.Amount))
	}
	sb.WriteString("Статус: " + statusLabel(r.Status))
	return sb.String()
}

func extrasText(c booking.Context) string {
	var parts []string
	for _, a := range c.AddOns() {
		parts = append(parts, a.Label())
	}
	if c.FirstBedroom != nil && *c.FirstBedroom {
		parts = append(parts, "Первая спальня")
	}
	return strings.Join(parts, ", ")
}
