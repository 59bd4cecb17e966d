// Package mutation реализует изменения коллекций: новые публикации и
// сообщения, реакции и удаление собственных публикаций.
//
// Проверки содержимого, идентичности и прав выполняются до обращения к
// хранилищу. Любая ошибка оставляет временное сообщение, которое само
// исчезает через NoticeTTL. Повторов и очереди нет.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Eka2r/Padayon/internal/lib/metrics"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/live"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/storage"
)

// AnonymousAuthor is the author name of anonymous posts.
const AnonymousAuthor = "Anonymous"

var (
	// ErrEmptyContent is returned for empty or whitespace-only content.
	ErrEmptyContent = errors.New("content is empty")
	// ErrNotAuthenticated is returned when the session has no identity.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPermissionDenied is returned when a delete is not allowed.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound is returned when the target document is gone.
	ErrNotFound = errors.New("document not found")
)

// Repository описывает операции хранилища над коллекциями.
type Repository interface {
	CreatePost(ctx context.Context, p models.NewPost) (*models.Post, error)
	GetPost(ctx context.Context, appID, id string) (*models.Post, error)
	SetReactionCount(ctx context.Context, appID, id string, count int) (int, error)
	IncrementReactionCount(ctx context.Context, appID, id string) (int, error)
	DeletePost(ctx context.Context, appID, id, authorID string) error
	CreateMessage(ctx context.Context, m models.NewMessage) (*models.Message, error)
}

// Events receives a domain event after every successful mutation.
type Events interface {
	Publish(ctx context.Context, event models.Event) error
}

// Notices shows transient failure messages.
type Notices interface {
	Flash(ctx context.Context, identityID, kind, text string, ttl time.Duration)
}

// Messages are the user facing failure texts and the guest author name.
type Messages struct {
	GuestName        string
	EmptyContent     string
	SignInRequired   string
	PermissionDenied string
	PostFailed       string
	ReactionFailed   string
	DeleteFailed     string
	MessageFailed    string
}

// DefaultMessages returns English messages.
func DefaultMessages() Messages {
	return Messages{
		GuestName:        "Guest",
		EmptyContent:     "Please write something first.",
		SignInRequired:   "Please wait for your session to start.",
		PermissionDenied: "Only premium members can delete their own posts.",
		PostFailed:       "Could not share your post. Please try again.",
		ReactionFailed:   "Could not send your support. Please try again.",
		DeleteFailed:     "Could not delete the post. Please try again.",
		MessageFailed:    "Could not send your message. Please try again.",
	}
}

// Options configure a Service.
type Options struct {
	AppID           string
	NoticeTTL       time.Duration
	AtomicReactions bool
	Messages        Messages
	Counter         *prometheus.CounterVec
}

// Service выполняет изменения от имени сессии.
type Service struct {
	repo    Repository
	events  Events
	notices Notices
	opts    Options
	log     *slog.Logger
}

// NewService creates a Service.
func NewService(repo Repository, events Events, notices Notices, opts Options, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		notices: notices,
		opts:    opts,
		log:     log,
	}
}

// CreatePost publishes a Freedom Wall post.
func (s *Service) CreatePost(ctx context.Context, sess models.Session, content string, anonymous bool) (*models.Post, error) {
	const op = "mutation.CreatePost"
	content = strings.TrimSpace(content)
	if err := s.guard(ctx, op, sess, content); err != nil {
		return nil, err
	}

	post, err := s.repo.CreatePost(ctx, models.NewPost{
		AppID:       s.opts.AppID,
		Content:     content,
		AuthorID:    sess.Identity.ID,
		AuthorName:  s.authorName(sess, anonymous),
		IsAnonymous: anonymous,
	})
	if err != nil {
		return nil, s.failed(ctx, op, sess, s.opts.Messages.PostFailed, err)
	}

	s.emit(ctx, op, models.EventPostCreated, live.Posts, post.ID, sess)
	return post, nil
}

// AddReaction sets the post's count to currentCount+1. currentCount is what the
// caller last observed, so concurrent reactions can overwrite each other, but
// the stored count never goes down. The returned count is the stored one.
// With AtomicReactions the increment happens in the database instead.
func (s *Service) AddReaction(ctx context.Context, sess models.Session, postID string, currentCount int) (int, error) {
	const op = "mutation.AddReaction"
	if !sess.Authenticated() {
		return 0, s.rejected(ctx, op, sess, s.opts.Messages.SignInRequired, ErrNotAuthenticated)
	}

	var (
		count int
		err   error
	)
	if s.opts.AtomicReactions {
		count, err = s.repo.IncrementReactionCount(ctx, s.opts.AppID, postID)
	} else {
		count, err = s.repo.SetReactionCount(ctx, s.opts.AppID, postID, max(currentCount, 0)+1)
	}
	if err != nil {
		return 0, s.failed(ctx, op, sess, s.opts.Messages.ReactionFailed, err)
	}

	s.emit(ctx, op, models.EventPostReacted, live.Posts, postID, sess)
	return count, nil
}

// DeletePost removes a post. Only a premium caller who is the recorded author
// may delete. postAuthorID is the author the caller saw; a mismatch is
// rejected without touching storage, and the stored author is checked
// before the delete.
func (s *Service) DeletePost(ctx context.Context, sess models.Session, postID, postAuthorID string) error {
	const op = "mutation.DeletePost"
	if !sess.Premium() || sess.Identity.ID != postAuthorID {
		return s.rejected(ctx, op, sess, s.opts.Messages.PermissionDenied, ErrPermissionDenied)
	}

	post, err := s.repo.GetPost(ctx, s.opts.AppID, postID)
	if err != nil {
		return s.failed(ctx, op, sess, s.opts.Messages.DeleteFailed, err)
	}
	if post.AuthorID != sess.Identity.ID {
		s.log.Warn("delete of another author's post refused", sl.Op(op), slog.String("post_id", postID))
		return s.rejected(ctx, op, sess, s.opts.Messages.PermissionDenied, ErrPermissionDenied)
	}

	if err := s.repo.DeletePost(ctx, s.opts.AppID, postID, sess.Identity.ID); err != nil {
		return s.failed(ctx, op, sess, s.opts.Messages.DeleteFailed, err)
	}

	s.emit(ctx, op, models.EventPostDeleted, live.Posts, postID, sess)
	return nil
}

// CreateMessage sends a community message.
func (s *Service) CreateMessage(ctx context.Context, sess models.Session, content string) (*models.Message, error) {
	const op = "mutation.CreateMessage"
	content = strings.TrimSpace(content)
	if err := s.guard(ctx, op, sess, content); err != nil {
		return nil, err
	}

	msg, err := s.repo.CreateMessage(ctx, models.NewMessage{
		AppID:      s.opts.AppID,
		Content:    content,
		AuthorID:   sess.Identity.ID,
		AuthorName: s.authorName(sess, false),
	})
	if err != nil {
		return nil, s.failed(ctx, op, sess, s.opts.Messages.MessageFailed, err)
	}

	s.emit(ctx, op, models.EventMessageCreated, live.Messages, msg.ID, sess)
	return msg, nil
}

func (s *Service) guard(ctx context.Context, op string, sess models.Session, content string) error {
	if content == "" {
		return s.rejected(ctx, op, sess, s.opts.Messages.EmptyContent, ErrEmptyContent)
	}
	if !sess.Authenticated() {
		return s.rejected(ctx, op, sess, s.opts.Messages.SignInRequired, ErrNotAuthenticated)
	}
	return nil
}

func (s *Service) authorName(sess models.Session, anonymous bool) string {
	switch {
	case anonymous:
		return AnonymousAuthor
	case sess.Identity.Email != "":
		return sess.Identity.Email
	default:
		return s.opts.Messages.GuestName
	}
}

func (s *Service) rejected(ctx context.Context, op string, sess models.Session, msg string, err error) error {
	s.count(op, metrics.OutcomeRejected)
	s.notices.Flash(ctx, sess.Identity.ID, models.NoticeMutation, msg, s.opts.NoticeTTL)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) failed(ctx context.Context, op string, sess models.Session, msg string, err error) error {
	s.count(op, metrics.OutcomeFailed)
	s.log.Error("mutation failed", sl.Op(op), sl.Err(err))
	s.notices.Flash(ctx, sess.Identity.ID, models.NoticeMutation, msg, s.opts.NoticeTTL)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) emit(ctx context.Context, op, eventType, collection, docID string, sess models.Session) {
	s.count(op, metrics.OutcomeOK)
	event := models.Event{
		Type:       eventType,
		AppID:      s.opts.AppID,
		Collection: collection,
		DocumentID: docID,
		ActorID:    sess.Identity.ID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish event", sl.Op(op), slog.String("type", eventType), sl.Err(err))
	}
}

func (s *Service) count(op, outcome string) {
	if s.opts.Counter != nil {
		s.opts.Counter.WithLabelValues(op, outcome).Inc()
	}
}
