// Package session управляет состоянием авторизации: анонимная идентичность
// при старте, погашение заранее выданного токена, регистрация и вход по email,
// выход со сбросом к новой анонимной идентичности.
//
// Ошибки входа, регистрации и выхода не выходят за пределы менеджера как
// error: они превращаются в понятное сообщение в Result.Error и в слот
// ошибок авторизации, который пользователь закрывает сам.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Eka2r/Padayon/internal/lib/jwt"
	"github.com/Eka2r/Padayon/internal/lib/password"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/storage"
)

var (
	// ErrInvalidToken is returned by Resolve for unparsable or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrRevokedToken is returned by Resolve for signed-out tokens.
	ErrRevokedToken = errors.New("token was revoked")
)

// Change kinds published to observers.
const (
	ChangeStart   = "start"
	ChangeRedeem  = "redeem"
	ChangeSignUp  = "signup"
	ChangeSignIn  = "signin"
	ChangeSignOut = "signout"
)

// UserRepository описывает хранилище учётных записей.
type UserRepository interface {
	RegisterUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// TokenStore хранит отозванные токены до истечения их срока.
type TokenStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Notices is the visible auth error slot.
type Notices interface {
	Post(ctx context.Context, identityID, kind, text string, ttl time.Duration) error
	Dismiss(ctx context.Context, identityID, kind string) error
}

// Messages are the human readable auth errors.
type Messages struct {
	InvalidCredentials string
	EmailTaken         string
	WeakPassword       string
	TokenRejected      string
	Unavailable        string
}

// DefaultMessages returns English messages.
func DefaultMessages() Messages {
	return Messages{
		InvalidCredentials: "Invalid email or password.",
		EmailTaken:         "That email is already registered.",
		WeakPassword:       fmt.Sprintf("Password must be at least %d characters.", password.MinLength),
		TokenRejected:      "Your sign-in link could not be used. Continuing as a guest.",
		Unavailable:        "Sign-in is unavailable right now. Please try again.",
	}
}

// Result is the outcome of a session operation. Error is empty on success;
// otherwise Session is the unchanged current session.
type Result struct {
	Session models.Session `json:"session"`
	Error   string         `json:"error,omitempty"`
}

// Change is one event of the auth-state stream.
type Change struct {
	Kind    string
	Session models.Session
}

// Manager owns sign-in state transitions.
type Manager struct {
	users    UserRepository
	tokens   jwt.Maker
	revoked  TokenStore
	notices  Notices
	messages Messages
	log      *slog.Logger

	mu        sync.RWMutex
	observers []func(Change)
}

// NewManager creates a Manager.
func NewManager(users UserRepository, tokens jwt.Maker, revoked TokenStore, notices Notices, messages Messages, log *slog.Logger) *Manager {
	return &Manager{
		users:    users,
		tokens:   tokens,
		revoked:  revoked,
		notices:  notices,
		messages: messages,
		log:      log,
	}
}

// Watch subscribes fn to every session change. Observers run synchronously
// in registration order.
func (m *Manager) Watch(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Manager) publish(kind string, s models.Session) {
	m.mu.RLock()
	observers := m.observers
	m.mu.RUnlock()
	for _, fn := range observers {
		fn(Change{Kind: kind, Session: s})
	}
}

// Start opens a session. A continuation token is redeemed first; if that
// fails the manager falls back to a fresh anonymous identity.
func (m *Manager) Start(ctx context.Context, continuationToken string) Result {
	const op = "session.Start"
	log := m.log.With(sl.Op(op))

	if continuationToken != "" {
		s, err := m.redeem(ctx, continuationToken)
		if err == nil {
			log.Info("continuation token redeemed", slog.String("identity", s.Identity.ID))
			m.publish(ChangeRedeem, s)
			return Result{Session: s}
		}
		log.Warn("continuation token rejected, falling back to anonymous", sl.Err(err))

		res := m.anonymous(ctx, ChangeStart)
		if res.Error == "" {
			res.Error = m.messages.TokenRejected
			m.postAuthError(ctx, res.Session.Identity.ID, res.Error)
		}
		return res
	}

	return m.anonymous(ctx, ChangeStart)
}

func (m *Manager) redeem(ctx context.Context, token string) (models.Session, error) {
	claims, err := m.parse(ctx, token)
	if err != nil {
		return models.Session{}, err
	}
	identity := claims.Identity()
	if !identity.Anonymous {
		user, err := m.users.GetUser(ctx, identity.ID)
		if err != nil {
			return models.Session{}, err
		}
		identity.Email = user.Email
	}
	return m.issue(identity)
}

func (m *Manager) anonymous(ctx context.Context, kind string) Result {
	const op = "session.anonymous"
	s, err := m.issue(models.Identity{ID: uuid.NewString(), Anonymous: true})
	if err != nil {
		m.log.Error("failed to issue anonymous identity", sl.Op(op), sl.Err(err))
		return Result{Error: m.messages.Unavailable}
	}
	m.publish(kind, s)
	return Result{Session: s}
}

func (m *Manager) issue(identity models.Identity) (models.Session, error) {
	token, err := m.tokens.GenerateToken(identity)
	if err != nil {
		return models.Session{}, err
	}
	return models.NewSession(identity, token), nil
}

// SignUp creates an email identity and promotes the session to it.
func (m *Manager) SignUp(ctx context.Context, current models.Session, email, rawPassword string) Result {
	const op = "session.SignUp"
	log := m.log.With(sl.Op(op))
	email = normalizeEmail(email)

	if err := password.Validate(rawPassword); err != nil {
		return m.fail(ctx, current, m.messages.WeakPassword)
	}
	hash, err := password.GetHash(rawPassword)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return m.fail(ctx, current, m.messages.Unavailable)
	}

	user, err := m.users.RegisterUser(ctx, email, hash)
	if errors.Is(err, storage.ErrEmailTaken) {
		return m.fail(ctx, current, m.messages.EmailTaken)
	}
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		return m.fail(ctx, current, m.messages.Unavailable)
	}

	return m.promote(ctx, current, user, ChangeSignUp)
}

// SignIn authenticates an existing email identity.
func (m *Manager) SignIn(ctx context.Context, current models.Session, email, rawPassword string) Result {
	const op = "session.SignIn"
	log := m.log.With(sl.Op(op))

	user, err := m.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return m.fail(ctx, current, m.messages.InvalidCredentials)
	}
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		return m.fail(ctx, current, m.messages.Unavailable)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return m.fail(ctx, current, m.messages.InvalidCredentials)
	}

	return m.promote(ctx, current, user, ChangeSignIn)
}

func (m *Manager) promote(ctx context.Context, current models.Session, user *models.User, kind string) Result {
	s, err := m.issue(models.Identity{ID: user.UUID, Email: user.Email})
	if err != nil {
		m.log.Error("failed to issue session", sl.Err(err))
		return m.fail(ctx, current, m.messages.Unavailable)
	}
	m.revoke(ctx, current.Token)
	m.dismissAuthError(ctx, current.Identity.ID)
	m.publish(kind, s)
	return Result{Session: s}
}

// SignOut revokes the current token and resets to a fresh anonymous identity.
func (m *Manager) SignOut(ctx context.Context, current models.Session) Result {
	m.revoke(ctx, current.Token)
	res := m.anonymous(ctx, ChangeSignOut)
	if res.Error != "" {
		res.Session = current
	}
	return res
}

// Resolve maps a bearer token to its session.
func (m *Manager) Resolve(ctx context.Context, token string) (models.Session, error) {
	claims, err := m.parse(ctx, token)
	if err != nil {
		return models.Session{}, err
	}
	return models.NewSession(claims.Identity(), token), nil
}

func (m *Manager) parse(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "session.parse"
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	revoked, err := m.revoked.Exists(ctx, revokedKey(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrRevokedToken)
	}
	return claims, nil
}

func (m *Manager) revoke(ctx context.Context, token string) {
	if token == "" {
		return
	}
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left > 0 {
			ttl = left
		}
	}
	if err := m.revoked.Set(ctx, revokedKey(claims.ID), true, ttl); err != nil {
		m.log.Warn("failed to revoke token", sl.Err(err))
	}
}

func (m *Manager) fail(ctx context.Context, current models.Session, msg string) Result {
	m.postAuthError(ctx, current.Identity.ID, msg)
	return Result{Session: current, Error: msg}
}

func (m *Manager) postAuthError(ctx context.Context, identityID, msg string) {
	if err := m.notices.Post(ctx, identityID, models.NoticeAuth, msg, 0); err != nil {
		m.log.Warn("failed to post auth notice", sl.Err(err))
	}
}

func (m *Manager) dismissAuthError(ctx context.Context, identityID string) {
	if identityID == "" {
		return
	}
	if err := m.notices.Dismiss(ctx, identityID, models.NoticeAuth); err != nil {
		m.log.Warn("failed to dismiss auth notice", sl.Err(err))
	}
}

func revokedKey(jti string) string {
	return "session:revoked:" + jti
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
