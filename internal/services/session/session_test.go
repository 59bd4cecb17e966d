package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Eka2r/Padayon/internal/cache"
	"github.com/Eka2r/Padayon/internal/config"
	"github.com/Eka2r/Padayon/internal/lib/jwt"
	"github.com/Eka2r/Padayon/internal/lib/password"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/notice"
	"github.com/Eka2r/Padayon/internal/services/session"
	"github.com/Eka2r/Padayon/internal/storage"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type fixture struct {
	manager *session.Manager
	users   *UserRepoMock
	maker   *jwt.MakerImpl
	board   *notice.Board
	changes []session.Change
}

func newFixture(t *testing.T) *fixture {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		users: new(UserRepoMock),
		maker: jwt.NewJWTMaker("secret", time.Hour, "padayon-test"),
		board: notice.NewBoard(c, log),
	}
	f.manager = session.NewManager(f.users, f.maker, c, f.board, session.DefaultMessages(), log)
	f.manager.Watch(func(ch session.Change) { f.changes = append(f.changes, ch) })
	return f
}

func (f *fixture) authNotices(t *testing.T, identityID string) []models.Notice {
	list, err := f.board.List(context.Background(), identityID)
	require.NoError(t, err)
	return list
}

func TestManager_StartAnonymous(t *testing.T) {
	f := newFixture(t)

	res := f.manager.Start(context.Background(), "")

	require.Empty(t, res.Error)
	assert.True(t, res.Session.Identity.Anonymous)
	assert.NotEmpty(t, res.Session.Identity.ID)
	assert.Equal(t, models.EntitlementFree, res.Session.Entitlement)
	assert.NotEmpty(t, res.Session.Token)
	require.Len(t, f.changes, 1)
	assert.Equal(t, session.ChangeStart, f.changes[0].Kind)

	resolved, err := f.manager.Resolve(context.Background(), res.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session, resolved)
}

func TestManager_StartRedeemsContinuationToken(t *testing.T) {
	f := newFixture(t)
	token, err := f.maker.GenerateToken(models.Identity{ID: "uid-1", Email: "user@x.com"})
	require.NoError(t, err)
	f.users.On("GetUser", mock.Anything, "uid-1").Return(&models.User{UUID: "uid-1", Email: "user@x.com"}, nil).Once()

	res := f.manager.Start(context.Background(), token)

	require.Empty(t, res.Error)
	assert.Equal(t, "user@x.com", res.Session.Identity.Email)
	assert.True(t, res.Session.Premium())
	assert.Equal(t, session.ChangeRedeem, f.changes[0].Kind)
	f.users.AssertExpectations(t)
}

func TestManager_StartFallsBackOnBadToken(t *testing.T) {
	tests := []struct {
		name  string
		token func(f *fixture) string
	}{
		{
			name:  "garbage token",
			token: func(_ *fixture) string { return "not-a-token" },
		},
		{
			name: "account vanished",
			token: func(f *fixture) string {
				f.users.On("GetUser", mock.Anything, "gone").Return(nil, storage.ErrNotFound).Once()
				tok, _ := f.maker.GenerateToken(models.Identity{ID: "gone", Email: "gone@x.com"})
				return tok
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res := f.manager.Start(context.Background(), tt.token(f))

			assert.Equal(t, session.DefaultMessages().TokenRejected, res.Error)
			assert.True(t, res.Session.Identity.Anonymous)
			assert.False(t, res.Session.Premium())
			assert.NotEmpty(t, res.Session.Token)
			assert.Len(t, f.authNotices(t, res.Session.Identity.ID), 1)
		})
	}
}

func TestManager_SignUp(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		setup     func(m *UserRepoMock)
		wantError string
	}{
		{
			name:     "success",
			password: "pw123456",
			setup: func(m *UserRepoMock) {
				m.On("RegisterUser", mock.Anything, "user@x.com", mock.MatchedBy(func(hash string) bool {
					return password.CompareHash(hash, "pw123456") == nil
				})).Return(&models.User{UUID: "uid-1", Email: "user@x.com"}, nil).Once()
			},
		},
		{
			name:      "weak password",
			password:  "123",
			setup:     func(_ *UserRepoMock) {},
			wantError: session.DefaultMessages().WeakPassword,
		},
		{
			name:     "email taken",
			password: "pw123456",
			setup: func(m *UserRepoMock) {
				m.On("RegisterUser", mock.Anything, "user@x.com", mock.Anything).
					Return(nil, storage.ErrEmailTaken).Once()
			},
			wantError: session.DefaultMessages().EmailTaken,
		},
		{
			name:     "storage failure",
			password: "pw123456",
			setup: func(m *UserRepoMock) {
				m.On("RegisterUser", mock.Anything, "user@x.com", mock.Anything).
					Return(nil, errors.New("db down")).Once()
			},
			wantError: session.DefaultMessages().Unavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			anon := f.manager.Start(context.Background(), "").Session
			tt.setup(f.users)

			res := f.manager.SignUp(context.Background(), anon, "  User@X.com ", tt.password)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, res.Error)
				assert.Equal(t, anon, res.Session)
				assert.Len(t, f.authNotices(t, anon.Identity.ID), 1)
			} else {
				require.Empty(t, res.Error)
				assert.Equal(t, "user@x.com", res.Session.Identity.Email)
				assert.Equal(t, models.EntitlementPremium, res.Session.Entitlement)

				_, err := f.manager.Resolve(context.Background(), anon.Token)
				assert.ErrorIs(t, err, session.ErrRevokedToken, "anonymous token is revoked after promotion")
			}
			f.users.AssertExpectations(t)
		})
	}
}

func TestManager_SignIn(t *testing.T) {
	hash, err := password.GetHash("pw123456")
	require.NoError(t, err)
	user := &models.User{UUID: "uid-1", Email: "user@x.com", PasswordHash: hash}

	tests := []struct {
		name      string
		password  string
		setup     func(m *UserRepoMock)
		wantError string
	}{
		{
			name:     "success",
			password: "pw123456",
			setup: func(m *UserRepoMock) {
				m.On("GetUserByEmail", mock.Anything, "user@x.com").Return(user, nil).Once()
			},
		},
		{
			name:     "wrong password",
			password: "nope-nope",
			setup: func(m *UserRepoMock) {
				m.On("GetUserByEmail", mock.Anything, "user@x.com").Return(user, nil).Once()
			},
			wantError: session.DefaultMessages().InvalidCredentials,
		},
		{
			name:     "unknown email",
			password: "pw123456",
			setup: func(m *UserRepoMock) {
				m.On("GetUserByEmail", mock.Anything, "user@x.com").Return(nil, storage.ErrNotFound).Once()
			},
			wantError: session.DefaultMessages().InvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			anon := f.manager.Start(context.Background(), "").Session
			tt.setup(f.users)

			res := f.manager.SignIn(context.Background(), anon, "user@x.com", tt.password)

			assert.Equal(t, tt.wantError, res.Error)
			if tt.wantError == "" {
				assert.True(t, res.Session.Premium())
				assert.Equal(t, "uid-1", res.Session.Identity.ID)
			} else {
				assert.False(t, res.Session.Premium())
			}
			f.users.AssertExpectations(t)
		})
	}
}

func TestManager_EntitlementAcrossTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("RegisterUser", mock.Anything, "user@x.com", mock.Anything).
		Return(&models.User{UUID: "uid-1", Email: "user@x.com"}, nil).Once()

	start := f.manager.Start(ctx, "")
	assert.False(t, start.Session.Premium())

	signed := f.manager.SignUp(ctx, start.Session, "user@x.com", "pw123456")
	assert.True(t, signed.Session.Premium())

	out := f.manager.SignOut(ctx, signed.Session)
	require.Empty(t, out.Error)
	assert.False(t, out.Session.Premium())
	assert.True(t, out.Session.Identity.Anonymous)
	assert.NotEqual(t, start.Session.Identity.ID, out.Session.Identity.ID, "sign-out yields a fresh anonymous identity")

	_, err := f.manager.Resolve(ctx, signed.Session.Token)
	assert.ErrorIs(t, err, session.ErrRevokedToken)

	kinds := make([]string, len(f.changes))
	for i, c := range f.changes {
		kinds[i] = c.Kind
		assert.Equal(t, c.Session.Identity.Entitlement(), c.Session.Entitlement)
	}
	assert.Equal(t, []string{session.ChangeStart, session.ChangeSignUp, session.ChangeSignOut}, kinds)
}

func TestManager_ResolveRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}
