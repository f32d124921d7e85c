package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/pkg/logger"
	"yatube/internal/repository/mysql"
	"yatube/internal/repository/redis"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

type UserService struct {
	repo     *mysql.UserRepository
	tokens   *redis.TokenRepository
	issuer   *pkg.TokenIssuer
	emailSvc *EmailService
}

func NewUserService(db *gorm.DB, tokens *redis.TokenRepository, issuer *pkg.TokenIssuer, emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: db},
		tokens:   tokens,
		issuer:   issuer,
		emailSvc: emailSvc,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validatePassword(errs ValidationError, field, password, confirm string) {
	switch {
	case len([]rune(password)) < minPasswordLength:
		errs[field] = fmt.Sprintf("Пароль должен содержать не менее %d символов.", minPasswordLength)
	case password != confirm:
		errs[field] = "Пароли не совпадают."
	}
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs := ValidationError{}
	if !usernamePattern.MatchString(in.Username) {
		errs["username"] = "Допустимы только буквы, цифры и символы @/./+/-/_."
	} else if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		errs["username"] = "Пользователь с таким именем уже существует."
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	validatePassword(errs, "password", in.Password, in.Password2)
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Username: in.Username, Email: in.Email, Password: hash}
	if err = s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login 校验密码并签发 token，access token 写入 Redis 白名单（新登录会挤掉旧登录）
func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID, user.Username)
}

func (s *UserService) issue(ctx context.Context, userID uint64, username string) (*pkg.Pair, error) {
	pair, err := s.issuer.GeneratePair(userID, username)
	if err != nil {
		return nil, err
	}
	if err = s.tokens.Save(ctx, userID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Authenticate 由 cookie 中的 token 还原身份。access 过期但 refresh 有效时
// 返回新签发的 pair，调用方负责回写 cookie；任何失败都视为匿名
func (s *UserService) Authenticate(ctx context.Context, access, refresh string) (Principal, *pkg.Pair) {
	if access == "" && refresh == "" {
		return Anonymous, nil
	}
	if access != "" {
		claims, err := s.issuer.ParseAccess(access)
		if err == nil {
			if s.whitelisted(ctx, claims.UserID, access) {
				return Principal{UserID: claims.UserID, Username: claims.Username}, nil
			}
			return Anonymous, nil
		}
		if !errors.Is(err, pkg.ErrTokenExpired) {
			return Anonymous, nil
		}
	}
	if refresh == "" {
		return Anonymous, nil
	}

	pair, claims, err := s.issuer.Refresh(refresh)
	if err != nil {
		return Anonymous, nil
	}
	// 过期的 access 仍须是白名单中的那一个，否则已在别处登录或已登出
	if access != "" {
		saved, err := s.tokens.Get(ctx, claims.UserID)
		if err != nil || saved != access {
			return Anonymous, nil
		}
	}
	if err = s.tokens.Save(ctx, claims.UserID, pair.AccessToken); err != nil {
		logger.L.Warn("token refresh save failed", zap.Uint64("user_id", claims.UserID), zap.Error(err))
		return Anonymous, nil
	}
	return Principal{UserID: claims.UserID, Username: claims.Username}, pair
}

func (s *UserService) whitelisted(ctx context.Context, userID uint64, token string) bool {
	saved, err := s.tokens.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, redis.ErrTokenNotFound) {
			logger.L.Warn("token lookup failed", zap.Uint64("user_id", userID), zap.Error(err))
		}
		return false
	}
	if saved != token {
		return false
	}
	if err = s.tokens.Extend(ctx, userID); err != nil {
		logger.L.Warn("token extend failed", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return true
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.Delete(ctx, userID)
}

// RequestPasswordReset 邮箱未注册时同样返回 nil，不暴露账号是否存在
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{"email": "Обязательное поле."}
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.emailSvc.SendResetCode(ctx, user)
}

// ResetPassword 校验验证码后设置新密码，并注销当前登录
func (s *UserService) ResetPassword(ctx context.Context, email, code, password, password2 string) error {
	email = strings.TrimSpace(email)
	errs := ValidationError{}
	validatePassword(errs, "new_password", password, password2)
	if len(errs) > 0 {
		return errs
	}

	ok, err := s.emailSvc.VerifyCode(ctx, email, code)
	if err != nil && !errors.Is(err, redis.ErrCodeNotFound) {
		return err
	}
	if !ok {
		return ErrVerificationFailed
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, user, hash); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}
