package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/pkg/logger"
	"yatube/internal/repository/redis"
	"yatube/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type sentMail struct {
	to, subject, body string
}

type userEnv struct {
	svc     *UserService
	issuer  *pkg.TokenIssuer
	tokens  *redis.TokenRepository
	mails   []sentMail
	mailErr error
}

func newUserEnv(t *testing.T) *userEnv {
	t.Helper()
	db := testutil.NewDB(t)
	_, rdb := testutil.NewRedis(t)
	env := &userEnv{
		issuer: pkg.NewTokenIssuer("test-access", "test-refresh"),
		tokens: &redis.TokenRepository{RDB: rdb},
	}
	mailer := func(to, subject, body string) error {
		if env.mailErr != nil {
			return env.mailErr
		}
		env.mails = append(env.mails, sentMail{to, subject, body})
		return nil
	}
	emailSvc := NewEmailService(mailer, &redis.ResetCodeRepository{RDB: rdb})
	env.svc = NewUserService(db, env.tokens, env.issuer, emailSvc)
	return env
}

func (e *userEnv) signup(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.svc.Signup(context.Background(), SignupInput{
		Username: username, Email: username + "@example.com", Password: "password123", Password2: "password123",
	})
	require.NoError(t, err)
	return u
}

func TestUserService_Signup(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()

	u := env.signup(t, "leo")
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "password123", u.Password)

	tests := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"duplicate username", SignupInput{Username: "leo", Password: "password123", Password2: "password123"}, "username"},
		{"bad username", SignupInput{Username: "no spaces", Password: "password123", Password2: "password123"}, "username"},
		{"short password", SignupInput{Username: "max", Password: "short", Password2: "short"}, "password"},
		{"mismatch", SignupInput{Username: "max", Password: "password123", Password2: "password124"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Signup(ctx, tt.in)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr, tt.field)
		})
	}
}

func TestUserService_LoginAndAuthenticate(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()
	u := env.signup(t, "leo")

	_, err := env.svc.Login(ctx, "leo", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err := env.svc.Login(ctx, "leo", "password123")
	require.NoError(t, err)

	p, refreshed := env.svc.Authenticate(ctx, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "leo", p.Username)
	assert.Nil(t, refreshed)

	p, _ = env.svc.Authenticate(ctx, "garbage", "")
	assert.False(t, p.IsAuthenticated())

	require.NoError(t, env.svc.Logout(ctx, u.ID))
	p, _ = env.svc.Authenticate(ctx, pair.AccessToken, pair.RefreshToken)
	assert.False(t, p.IsAuthenticated())
}

// expiredAccess 签发一个已过期的 access token
func expiredAccess(t *testing.T, userID uint64, username string) string {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, pkg.Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(past),
			Subject:   "access",
		},
	})
	s, err := token.SignedString([]byte("test-access"))
	require.NoError(t, err)
	return s
}

func TestUserService_AuthenticateRefreshesExpiredAccess(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()
	u := env.signup(t, "leo")
	pair, err := env.issuer.GeneratePair(u.ID, u.Username)
	require.NoError(t, err)

	stale := expiredAccess(t, u.ID, u.Username)
	require.NoError(t, env.tokens.Save(ctx, u.ID, stale))

	p, refreshed := env.svc.Authenticate(ctx, stale, pair.RefreshToken)
	assert.Equal(t, u.ID, p.UserID)
	require.NotNil(t, refreshed)

	saved, err := env.tokens.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, refreshed.AccessToken, saved)

	// 旧 token 已被替换，不能再次刷新
	p, _ = env.svc.Authenticate(ctx, stale, pair.RefreshToken)
	assert.False(t, p.IsAuthenticated())
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func TestUserService_PasswordReset(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()
	env.signup(t, "leo")

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "unknown@example.com"))
	assert.Empty(t, env.mails)

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "leo@example.com"))
	require.Len(t, env.mails, 1)
	assert.Equal(t, "leo@example.com", env.mails[0].to)
	m := codePattern.FindStringSubmatch(env.mails[0].body)
	require.Len(t, m, 2)
	code := m[1]

	var verr ValidationError
	require.ErrorAs(t, env.svc.ResetPassword(ctx, "leo@example.com", code, "short", "short"), &verr)

	err := env.svc.ResetPassword(ctx, "leo@example.com", "000000x", "newpassword1", "newpassword1")
	assert.ErrorIs(t, err, ErrVerificationFailed)

	require.NoError(t, env.svc.ResetPassword(ctx, "leo@example.com", code, "newpassword1", "newpassword1"))
	_, err = env.svc.Login(ctx, "leo", "newpassword1")
	require.NoError(t, err)

	// 验证码只能用一次
	err = env.svc.ResetPassword(ctx, "leo@example.com", code, "another-pass", "another-pass")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestUserService_PasswordResetMailFailure(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()
	env.signup(t, "leo")
	env.mailErr = errors.New("smtp down")

	assert.Error(t, env.svc.RequestPasswordReset(ctx, "leo@example.com"))
	err := env.svc.ResetPassword(ctx, "leo@example.com", "123456", "newpassword1", "newpassword1")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

// failExpireHook 让 EXPIRE 命令失败，其余命令正常执行
type failExpireHook struct{}

func (failExpireHook) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (failExpireHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if cmd.Name() == "expire" {
			err := errors.New("expire unavailable")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (failExpireHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func TestUserService_AuthenticateLogsExtendFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.L
	logger.L = zap.New(core)
	t.Cleanup(func() { logger.L = prev })

	env := newUserEnv(t)
	ctx := context.Background()
	u := env.signup(t, "leo")
	pair, err := env.svc.Login(ctx, "leo", "password123")
	require.NoError(t, err)

	env.tokens.RDB.AddHook(failExpireHook{})

	p, refreshed := env.svc.Authenticate(ctx, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, u.ID, p.UserID)
	assert.Nil(t, refreshed)

	entries := logs.FilterMessage("token extend failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, u.ID, entries[0].ContextMap()["user_id"])
}
