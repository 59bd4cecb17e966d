// Package suggestion builds the AI features on top of the generative client:
// the rolling chat, affirmations for Freedom Wall drafts and conversation
// starters for the community chat.
package suggestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Eka2r/Padayon/internal/generative"
	"github.com/Eka2r/Padayon/internal/lib/metrics"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/models"
)

// Variants, used as metric labels.
const (
	VariantChat        = "chat"
	VariantAffirmation = "affirmation"
	VariantStarter     = "starter"
)

var (
	// ErrNotAuthenticated is returned when the session has no identity.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPremiumRequired is returned for premium-only variants.
	ErrPremiumRequired = errors.New("premium required")
	// ErrEmptyMessage is returned by Chat for empty or whitespace-only text.
	ErrEmptyMessage = errors.New("chat message is empty")
)

// Generator calls the model.
type Generator interface {
	GenerateContent(ctx context.Context, contents []generative.Content) (string, error)
}

// HistoryStore persists chat histories.
type HistoryStore interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Notices shows transient failure messages.
type Notices interface {
	Flash(ctx context.Context, identityID, kind, text string, ttl time.Duration)
}

// Fallback holds the fixed replies of one variant.
type Fallback struct {
	// Malformed is used when a reply arrived without usable text.
	Malformed string
	// Transport is used when the call itself failed.
	Transport string
}

// Messages are the locale driven prompts and fallbacks.
type Messages struct {
	Chat        Fallback
	Affirmation Fallback
	Starter     Fallback

	// AffirmationPrompt is a format string with one %s for the draft.
	AffirmationPrompt string
	StarterPrompt     string
	EmptyDraft        string
	StarterReady      string
	PremiumRequired   string
}

// DefaultMessages returns English messages.
func DefaultMessages() Messages {
	return Messages{
		Chat: Fallback{
			Malformed: "Sorry, I couldn't come up with a reply. Please try again.",
			Transport: "There was an error reaching the AI. Please check your internet connection.",
		},
		Affirmation: Fallback{
			Malformed: "Couldn't get a suggestion. Please try again.",
			Transport: "Error generating a suggestion. Please try again later.",
		},
		Starter: Fallback{
			Malformed: "Couldn't get a conversation starter. Please try again.",
			Transport: "Error generating a conversation starter. Please try again later.",
		},
		AffirmationPrompt: "Analyze the following student thought for its general sentiment (e.g. stress, hope, struggle, success) " +
			"and give a very short, supportive, general affirmation or coping tip (max 20 words). " +
			"Do NOT act as a therapist. Just one short, positive, encouraging note. " +
			"Example: \"Feeling overwhelmed? Take a deep breath and break it down.\"\n\nStudent thought: \"%s\"",
		StarterPrompt: "Generate a very short, open-ended question for general discussion in a student mental health support community. " +
			"The question should encourage sharing and empathy and relate to academic struggles, stress or well-being. Max 20 words. " +
			"Example: \"How do you handle academic pressure during exam season?\"",
		EmptyDraft:      "Please write something first to get a suggestion.",
		StarterReady:    "A conversation starter was generated! Feel free to edit it before sending.",
		PremiumRequired: "This is a premium feature. Sign up with email to unlock it.",
	}
}

// Suggestion is the outcome of Affirmation and ConversationStarter.
type Suggestion struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Notice   string `json:"notice,omitempty"`
}

// Reply is the outcome of Chat.
type Reply struct {
	Reply    models.ChatTurn   `json:"reply"`
	History  []models.ChatTurn `json:"history"`
	Fallback bool              `json:"fallback"`
}

// Options configure a Service.
type Options struct {
	Messages   Messages
	NoticeTTL  time.Duration
	HistoryTTL time.Duration
	Counter    *prometheus.CounterVec
}

// Service serves the AI variants.
type Service struct {
	gen     Generator
	history HistoryStore
	notices Notices
	opts    Options
	log     *slog.Logger

	locksMu sync.Mutex
	locks   map[string]*chatLock
}

// chatLock serialises the turns of one identity. holders counts callers that
// hold or wait for mu; only unheld locks are swept.
type chatLock struct {
	mu      sync.Mutex
	holders int
}

// NewService creates a Service.
func NewService(gen Generator, history HistoryStore, notices Notices, opts Options, log *slog.Logger) *Service {
	return &Service{
		gen:     gen,
		history: history,
		notices: notices,
		opts:    opts,
		log:     log,
		locks:   make(map[string]*chatLock),
	}
}

func historyKey(identityID string) string {
	return "chat:history:" + identityID
}

// History returns the identity's chat so far.
func (s *Service) History(ctx context.Context, sess models.Session) ([]models.ChatTurn, error) {
	const op = "suggestion.History"
	if !sess.Authenticated() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	turns, err := s.load(ctx, sess.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return turns, nil
}

// Chat appends text to the rolling history, sends the whole history and
// appends the reply. The history is never truncated. Fallback replies are
// recorded like real ones.
func (s *Service) Chat(ctx context.Context, sess models.Session, text string) (Reply, error) {
	const op = "suggestion.Chat"
	if !sess.Authenticated() {
		return Reply{}, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, fmt.Errorf("%s: %w", op, ErrEmptyMessage)
	}

	l := s.acquire(sess.Identity.ID)
	defer s.release(l)

	turns, err := s.load(ctx, sess.Identity.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("%s: %w", op, err)
	}
	turns = append(turns, models.ChatTurn{Role: models.RoleUser, Text: text})

	answer, fallback := s.generate(ctx, sess, VariantChat, generative.FromTurns(turns), s.opts.Messages.Chat)
	reply := models.ChatTurn{Role: models.RoleModel, Text: answer}
	turns = append(turns, reply)

	if err := s.history.Set(ctx, historyKey(sess.Identity.ID), turns, s.opts.HistoryTTL); err != nil {
		return Reply{}, fmt.Errorf("%s: %w", op, err)
	}
	return Reply{Reply: reply, History: turns, Fallback: fallback}, nil
}

// ResetChat clears the rolling history.
func (s *Service) ResetChat(ctx context.Context, sess models.Session) error {
	const op = "suggestion.ResetChat"
	if !sess.Authenticated() {
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	if err := s.history.Invalidate(ctx, historyKey(sess.Identity.ID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Affirmation suggests a short supportive note for a Freedom Wall draft.
// An empty draft returns EmptyDraft without calling the model.
func (s *Service) Affirmation(ctx context.Context, sess models.Session, draft string) (Suggestion, error) {
	const op = "suggestion.Affirmation"
	if err := s.premium(ctx, sess); err != nil {
		return Suggestion{}, fmt.Errorf("%s: %w", op, err)
	}
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return Suggestion{Notice: s.opts.Messages.EmptyDraft}, nil
	}

	prompt := fmt.Sprintf(s.opts.Messages.AffirmationPrompt, draft)
	text, fallback := s.generate(ctx, sess, VariantAffirmation, userPrompt(prompt), s.opts.Messages.Affirmation)
	return Suggestion{Text: text, Fallback: fallback}, nil
}

// ConversationStarter drafts an open question for the community chat. The
// text is meant to prefill the composer and is never posted here.
func (s *Service) ConversationStarter(ctx context.Context, sess models.Session) (Suggestion, error) {
	const op = "suggestion.ConversationStarter"
	if err := s.premium(ctx, sess); err != nil {
		return Suggestion{}, fmt.Errorf("%s: %w", op, err)
	}

	text, fallback := s.generate(ctx, sess, VariantStarter, userPrompt(s.opts.Messages.StarterPrompt), s.opts.Messages.Starter)
	if fallback {
		return Suggestion{Text: text, Fallback: true}, nil
	}
	return Suggestion{Text: text, Notice: s.opts.Messages.StarterReady}, nil
}

func (s *Service) premium(ctx context.Context, sess models.Session) error {
	if !sess.Authenticated() {
		return ErrNotAuthenticated
	}
	if !sess.Premium() {
		s.notices.Flash(ctx, sess.Identity.ID, models.NoticeAI, s.opts.Messages.PremiumRequired, s.opts.NoticeTTL)
		return ErrPremiumRequired
	}
	return nil
}

// generate never fails: errors turn into the variant's fallback text.
func (s *Service) generate(ctx context.Context, sess models.Session, variant string, contents []generative.Content, fb Fallback) (string, bool) {
	text, err := s.gen.GenerateContent(ctx, contents)
	if err == nil && strings.TrimSpace(text) != "" {
		s.count(variant, metrics.OutcomeOK)
		return text, false
	}
	if err == nil {
		err = generative.ErrEmptyResponse
	}

	s.count(variant, metrics.OutcomeFallback)
	s.log.Error("generative request failed", slog.String("variant", variant), sl.Err(err))

	reply := fb.Transport
	if generative.Malformed(err) {
		reply = fb.Malformed
	}
	if variant != VariantChat {
		s.notices.Flash(ctx, sess.Identity.ID, models.NoticeAI, reply, s.opts.NoticeTTL)
	}
	return reply, true
}

func (s *Service) load(ctx context.Context, identityID string) ([]models.ChatTurn, error) {
	var turns []models.ChatTurn
	if _, err := s.history.Get(ctx, historyKey(identityID), &turns); err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []models.ChatTurn{}
	}
	return turns, nil
}

func (s *Service) acquire(identityID string) *chatLock {
	s.locksMu.Lock()
	l, ok := s.locks[identityID]
	if !ok {
		l = &chatLock{}
		s.locks[identityID] = l
	}
	l.holders++
	s.locksMu.Unlock()

	l.mu.Lock()
	return l
}

func (s *Service) release(l *chatLock) {
	l.mu.Unlock()
	s.locksMu.Lock()
	l.holders--
	s.locksMu.Unlock()
}

// Sweep drops chat locks nobody holds or waits for and returns how many were
// dropped.
func (s *Service) Sweep() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	n := 0
	for id, l := range s.locks {
		if l.holders == 0 {
			delete(s.locks, id)
			n++
		}
	}
	return n
}

func (s *Service) count(variant, outcome string) {
	if s.opts.Counter != nil {
		s.opts.Counter.WithLabelValues(variant, outcome).Inc()
	}
}

func userPrompt(prompt string) []generative.Content {
	return []generative.Content{{Role: models.RoleUser, Parts: []generative.Part{{Text: prompt}}}}
}
