// README: Telegram transport: long polling, guest turns, payment proofs and admin review buttons.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/dialog"
	"secrethouse/internal/types"
)

// MaxProofSize is the largest payment proof file accepted, in bytes.
const MaxProofSize = 20 << 20

const (
	greetingText = "Здравствуйте! Я помощник Secret House. Помогу забронировать дом, рассчитать стоимость, проверить свободные даты и отвечу на вопросы."
	helpText     = "Напишите, что вас интересует: «хочу забронировать», «сколько стоит сутки для пары», «свободные даты в марте» или любой вопрос о доме. /start начинает диалог заново."
	errorText    = "Произошла ошибка. Попробуйте ещё раз чуть позже."
	tooLargeText = "Файл слишком большой. Отправьте подтверждение оплаты размером до 20 МБ."
)

var suggestionLabels = map[string]string{
	"booking":      "Забронировать",
	"availability": "Свободные даты",
	"certificate":  "Подарочный сертификат",
	"pricing":      "Цены",
}

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) StopReceivingUpdates() {
	c.api.StopReceivingUpdates()
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Conversations is the orchestrator surface the bot drives.
type Conversations interface {
	HandleMessage(ctx context.Context, conversationID, userID, text string) (dialog.Reply, error)
	HandlePaymentProof(ctx context.Context, conversationID string, proof booking.PaymentProof) (dialog.Reply, error)
	Reset(ctx context.Context, conversationID string) error
}

// Reviewer applies admin decisions. *booking.Service satisfies it.
type Reviewer interface {
	Approve(ctx context.Context, id types.ID, actorID string) (*booking.Record, error)
	Reject(ctx context.Context, id types.ID, actorID string) (*booking.Record, error)
}

type Bot struct {
	tg          telegramClient
	convs       Conversations
	reviewer    Reviewer
	limiter     Limiter
	adminChatID int64
	logger      *zap.Logger
}

func New(token string, convs Conversations, reviewer Reviewer, adminChatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return newBot(&realTelegramClient{api: api}, convs, reviewer, adminChatID, logger)
}

// NewWithTelegramClient allows injecting a fake Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, convs Conversations, reviewer Reviewer, adminChatID int64, logger *zap.Logger) (*Bot, error) {
	return newBot(tg, convs, reviewer, adminChatID, logger)
}

func newBot(tg telegramClient, convs Conversations, reviewer Reviewer, adminChatID int64, logger *zap.Logger) (*Bot, error) {
	if tg == nil {
		return nil, errors.New("telegram client is nil")
	}
	if convs == nil {
		return nil, errors.New("conversations are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{tg: tg, convs: convs, reviewer: reviewer, adminChatID: adminChatID, logger: logger}, nil
}

// SetLimiter enables the per-user message limit. Call before Start.
func (b *Bot) SetLimiter(l Limiter) {
	b.limiter = l
}

// Notifier returns an admin notifier sharing the bot's client.
func (b *Bot) Notifier() *AdminNotifier {
	return &AdminNotifier{tg: b.tg, adminChatID: b.adminChatID, logger: b.logger}
}

// Start polls updates until ctx is cancelled. Updates are handled one at a
// time; the orchestrator serialises per conversation anyway.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	defer b.tg.StopReceivingUpdates()
	b.logger.Info("telegram bot authorized", zap.String("username", b.tg.SelfUser().UserName))

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := b.logger.With(zap.String("request_id", uuid.NewString()), zap.Int("update_id", update.UpdateID))
	switch {
	case update.CallbackQuery != nil:
		l.Debug("handling callback", zap.String("data", update.CallbackQuery.Data))
		b.handleCallback(ctx, l, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, l, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, l *zap.Logger, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	convID := strconv.FormatInt(chatID, 10)
	userID := strconv.FormatInt(msg.From.ID, 10)

	if !b.allow(ctx, l, userID) {
		b.reply(l, chatID, rateLimitedText)
		return
	}

	if proof, ok := paymentProof(msg); ok {
		if proof.FileSize > MaxProofSize {
			b.reply(l, chatID, tooLargeText)
			return
		}
		reply, err := b.convs.HandlePaymentProof(ctx, convID, proof)
		if err != nil {
			l.Error("payment proof failed", zap.String("conversation_id", convID), zap.Error(err))
			b.reply(l, chatID, errorText)
			return
		}
		b.sendReply(l, chatID, reply)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	switch msg.Command() {
	case "start":
		if err := b.convs.Reset(ctx, convID); err != nil {
			l.Error("reset conversation failed", zap.String("conversation_id", convID), zap.Error(err))
		}
		b.reply(l, chatID, greetingText)
		return
	case "help":
		b.reply(l, chatID, helpText)
		return
	}

	reply, err := b.convs.HandleMessage(ctx, convID, userID, text)
	if err != nil {
		l.Error("turn failed", zap.String("conversation_id", convID), zap.Error(err))
		b.reply(l, chatID, errorText)
		return
	}
	b.sendReply(l, chatID, reply)
}

// allow lets the message through when the limiter itself fails.
func (b *Bot) allow(ctx context.Context, l *zap.Logger, userID string) bool {
	if b.limiter == nil {
		return true
	}
	ok, err := b.limiter.Allow(ctx, userID)
	if err != nil {
		l.Warn("rate limit check failed", zap.String("user_id", userID), zap.Error(err))
		return true
	}
	return ok
}

// paymentProof picks the largest photo size or the attached document.
func paymentProof(msg *tgbotapi.Message) (booking.PaymentProof, bool) {
	now := time.Unix(int64(msg.Date), 0)
	if msg.Date == 0 {
		now = time.Now()
	}
	if n := len(msg.Photo); n > 0 {
		p := msg.Photo[n-1]
		return booking.PaymentProof{FileID: p.FileID, FileType: "photo", FileSize: int64(p.FileSize), UploadedAt: now}, true
	}
	if msg.Document != nil {
		return booking.PaymentProof{FileID: msg.Document.FileID, FileType: "document", FileSize: int64(msg.Document.FileSize), UploadedAt: now}, true
	}
	return booking.PaymentProof{}, false
}

func (b *Bot) sendReply(l *zap.Logger, chatID int64, reply dialog.Reply) {
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if kb, ok := suggestionKeyboard(reply.Suggestions); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := b.tg.Send(msg); err != nil {
		l.Warn("send reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func suggestionKeyboard(suggestions []string) (tgbotapi.ReplyKeyboardMarkup, bool) {
	var buttons []tgbotapi.KeyboardButton
	for _, s := range suggestions {
		if label, ok := suggestionLabels[s]; ok {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
	}
	if len(buttons) == 0 {
		return tgbotapi.ReplyKeyboardMarkup{}, false
	}
	kb := tgbotapi.NewOneTimeReplyKeyboard(buttons)
	kb.ResizeKeyboard = true
	return kb, true
}

func (b *Bot) reply(l *zap.Logger, chatID int64, text string) {
	if _, err := b.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		l.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, l *zap.Logger, cq *tgbotapi.CallbackQuery) {
	action, ref, ok := parseReviewData(cq.Data)
	if !ok {
		b.answerCallback(l, cq.ID, "")
		return
	}
	if b.reviewer == nil || cq.Message == nil || cq.Message.Chat == nil || cq.Message.Chat.ID != b.adminChatID || b.adminChatID == 0 {
		b.answerCallback(l, cq.ID, "Недостаточно прав")
		return
	}
	actor := "tg"
	if cq.From != nil {
		actor = "tg:" + strconv.FormatInt(cq.From.ID, 10)
	}

	var (
		rec *booking.Record
		err error
	)
	switch action {
	case actionApprove:
		rec, err = b.reviewer.Approve(ctx, ref, actor)
	case actionReject:
		rec, err = b.reviewer.Reject(ctx, ref, actor)
	}
	switch {
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict):
		b.answerCallback(l, cq.ID, "Заявка уже обработана")
		return
	case errors.Is(err, booking.ErrNotFound):
		b.answerCallback(l, cq.ID, "Заявка не найдена")
		return
	case err != nil:
		l.Error("review failed", zap.String("booking_id", string(ref)), zap.Error(err))
		b.answerCallback(l, cq.ID, "Ошибка, попробуйте ещё раз")
		return
	}

	b.answerCallback(l, cq.ID, statusLabel(rec.Status))
	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID,
		fmt.Sprintf("%s\n\n%s (%s)", cq.Message.Text, statusLabel(rec.Status), callbackActor(cq.From)))
	if _, err := b.tg.Request(edit); err != nil {
		l.Warn("edit review message failed", zap.Error(err))
	}
}

func (b *Bot) answerCallback(l *zap.Logger, id, text string) {
	if _, err := b.tg.Request(tgbotapi.NewCallback(id, text)); err != nil {
		l.Warn("answer callback failed", zap.Error(err))
	}
}

func callbackActor(u *tgbotapi.User) string {
	if u == nil {
		return "admin"
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return strconv.FormatInt(u.ID, 10)
}
