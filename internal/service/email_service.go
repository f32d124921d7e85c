package service

import (
	"context"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/redis"
)

type EmailService struct {
	mailer pkg.Mailer
	codes  *redis.ResetCodeRepository
}

func NewEmailService(mailer pkg.Mailer, codes *redis.ResetCodeRepository) *EmailService {
	return &EmailService{mailer: mailer, codes: codes}
}

// SendResetCode 先写 pending，邮件发出后再转 confirmed；确认失败时清理 pending
func (s *EmailService) SendResetCode(ctx context.Context, user *model.User) error {
	code, err := pkg.RandDigits(pkg.ResetCodeLength)
	if err != nil {
		return err
	}
	if err = s.codes.SavePending(ctx, user.Email, code); err != nil {
		return err
	}

	html := pkg.ResetCodeHTML(user.Username, code, redis.DefaultEmailCodeTTL)
	if err = s.mailer(user.Email, "Сброс пароля на Yatube", html); err != nil {
		_ = s.codes.DeletePending(ctx, user.Email)
		return err
	}

	if err = s.codes.Confirm(ctx, user.Email); err != nil {
		_ = s.codes.DeletePending(ctx, user.Email)
		return err
	}
	return nil
}

// VerifyCode 校验成功后验证码即失效
func (s *EmailService) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	ok, err := s.codes.Consume(ctx, email, code)
	if err != nil {
		return false, err
	}
	return ok, nil
}
