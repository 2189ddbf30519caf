// README: FAQ answering over the house prompt with history, escalation and daily quota.
package faq

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"secrethouse/internal/ai"
	"secrethouse/internal/modules/pricing"
)

const (
	// HistorySent is how many previous messages accompany a question.
	HistorySent = 6
	// HistoryKept is how many messages a Context retains.
	HistoryKept = 12
	// DefaultTTL is how long an idle FAQ conversation is kept.
	DefaultTTL = 30 * time.Minute
)

const (
	fallbackAnswer = "Извините, произошла ошибка при обработке вашего вопроса. Обратитесь к администратору " + AdminContact
	quotaAnswer    = "Вы исчерпали лимит вопросов на сегодня. Пожалуйста, обратитесь к администратору " + AdminContact
	escalationNote = "🙋‍♂️ Для получения детальной консультации обращайтесь к администратору " + AdminContact
)

var escalationPhrases = []string{
	"не могу ответить",
	"обратитесь к администратору",
	"свяжитесь с нами",
	"не уверен",
	"не знаю",
	"обратись к",
	AdminContact,
}

var suggestionRules = []struct {
	keywords   []string
	suggestion string
}{
	{[]string{"забронировать", "бронир"}, "booking"},
	{[]string{"свободные даты", "доступн"}, "availability"},
	{[]string{"сертификат", "подарок"}, "certificate"},
	{[]string{"цен", "стоимост", "тариф"}, "pricing"},
}

// TariffSource supplies the tariff list for the prompt. *pricing.Service satisfies it.
type TariffSource interface {
	Tariffs() []pricing.Tariff
}

// QuotaCounter counts questions against a daily limit. *Quota satisfies it.
type QuotaCounter interface {
	UseQuestion(ctx context.Context, userID string) error
}

// Config tunes the FAQ service.
type Config struct {
	Timeout time.Duration
	TTL     time.Duration
}

// Service answers free-form questions about the house.
type Service struct {
	answerer ai.Answerer
	tariffs  TariffSource
	quota    QuotaCounter
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a Service. answerer and quota may be nil: without an
// answerer every question gets the fallback reply; without a quota questions are unlimited.
func NewService(answerer ai.Answerer, tariffs TariffSource, quota QuotaCounter, cfg Config, logger *zap.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{answerer: answerer, tariffs: tariffs, quota: quota, cfg: cfg, logger: logger, now: time.Now}
}

// TTL returns the idle lifetime of a FAQ Context.
func (s *Service) TTL() time.Duration { return s.cfg.TTL }

// Answer replies to question and returns the updated conversation context.
// An expired or nil fc starts a new conversation. Failures never surface as
// errors: the guest always receives a reply.
func (s *Service) Answer(ctx context.Context, userID, question string, fc *Context) (Response, *Context) {
	now := s.now()
	if fc == nil || fc.Expired(now, s.cfg.TTL) {
		fc = &Context{StartedAt: now, UpdatedAt: now}
	}

	if s.quota != nil {
		if err := s.quota.UseQuestion(ctx, userID); err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				return Response{Answer: quotaAnswer, NeedsHuman: true}, fc
			}
			s.logger.Warn("faq quota check failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	answer, err := s.ask(ctx, question, fc.History)
	if err != nil {
		s.logger.Warn("faq answer failed", zap.String("user_id", userID), zap.Error(err))
		return Response{Answer: fallbackAnswer, NeedsHuman: true}, fc
	}

	resp := Response{Answer: answer, NeedsHuman: NeedsHuman(answer), Suggestions: Suggestions(question + " " + answer)}
	if resp.NeedsHuman && !strings.Contains(answer, AdminContact) {
		resp.Answer = answer + "\n\n" + escalationNote
	}

	next := &Context{
		History:   appendHistory(fc.History, question, answer),
		Questions: fc.Questions + 1,
		StartedAt: fc.StartedAt,
		UpdatedAt: now,
	}
	return resp, next
}

func (s *Service) ask(ctx context.Context, question string, history []ai.Message) (string, error) {
	if s.answerer == nil {
		return "", errors.New("answerer not configured")
	}
	var tariffs []pricing.Tariff
	if s.tariffs != nil {
		tariffs = s.tariffs.Tariffs()
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	answer, err := s.answerer.Answer(ctx, SystemPrompt(tariffs), lastMessages(history, HistorySent), question)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New("empty answer")
	}
	return answer, nil
}

// NeedsHuman reports whether an answer defers to the administrator.
func NeedsHuman(answer string) bool {
	low := strings.ToLower(answer)
	for _, p := range escalationPhrases {
		if strings.Contains(low, p) {
			return true
		}
	}
	return false
}

// Suggestions lists follow-up actions hinted at by text, in a fixed order.
func Suggestions(text string) []string {
	low := strings.ToLower(text)
	var out []string
	for _, r := range suggestionRules {
		for _, k := range r.keywords {
			if strings.Contains(low, k) {
				out = append(out, r.suggestion)
				break
			}
		}
	}
	return out
}

func appendHistory(history []ai.Message, question, answer string) []ai.Message {
	out := make([]ai.Message, 0, len(history)+2)
	out = append(out, history...)
	out = append(out,
		ai.Message{Role: ai.RoleUser, Content: question},
		ai.Message{Role: ai.RoleAssistant, Content: answer},
	)
	return lastMessages(out, HistoryKept)
}

func lastMessages(history []ai.Message, n int) []ai.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
