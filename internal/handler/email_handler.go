package handler

import (
	"errors"
	"net/http"

	"yatube/internal/service"
	"yatube/internal/view"

	"github.com/gin-gonic/gin"
)

// EmailHandler 通过邮件验证码重置密码
type EmailHandler struct {
	svc   *service.UserService
	pages *Pages
}

type SendCodeReq struct {
	Email string `form:"email" binding:"required,email"`
}

type ResetReq struct {
	Email        string `form:"email" binding:"required,email"`
	Code         string `form:"code" binding:"required,len=6,numeric"`
	NewPassword1 string `form:"new_password1"`
	NewPassword2 string `form:"new_password2"`
}

func NewEmailHandler(svc *service.UserService, pages *Pages) *EmailHandler {
	return &EmailHandler{svc: svc, pages: pages}
}

const codeSentMessage = "Если адрес зарегистрирован, мы отправили на него код для сброса пароля."

func (h *EmailHandler) ResetForm(c *gin.Context) {
	h.pages.HTML(c, http.StatusOK, "Восстановление пароля", "password_reset", view.AuthFormData{})
}

// SendCode 邮箱是否注册都给出同样的提示
func (h *EmailHandler) SendCode(c *gin.Context) {
	var req SendCodeReq
	if err := c.ShouldBind(&req); err != nil {
		h.pages.HTML(c, http.StatusOK, "Восстановление пароля", "password_reset", view.AuthFormData{
			Email:  req.Email,
			Errors: service.ValidationError{"email": "Введите правильный адрес электронной почты."},
		})
		return
	}
	if err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.HTML(c, http.StatusOK, "Введите новый пароль", "password_reset_confirm", view.AuthFormData{
		Email:   req.Email,
		Message: codeSentMessage,
	})
}

func (h *EmailHandler) ConfirmForm(c *gin.Context) {
	h.pages.HTML(c, http.StatusOK, "Введите новый пароль", "password_reset_confirm", view.AuthFormData{Email: c.Query("email")})
}

func (h *EmailHandler) Confirm(c *gin.Context) {
	var req ResetReq
	bindErr := c.ShouldBind(&req)
	data := view.AuthFormData{Email: req.Email}
	if bindErr != nil {
		data.Errors = service.ValidationError{"code": "Неверный или просроченный код."}
		h.pages.HTML(c, http.StatusOK, "Введите новый пароль", "password_reset_confirm", data)
		return
	}

	err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword1, req.NewPassword2)
	var verr service.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Errors = verr
	case errors.Is(err, service.ErrVerificationFailed), errors.Is(err, service.ErrNotFound):
		data.Errors = service.ValidationError{"code": "Неверный или просроченный код."}
	case err != nil:
		h.pages.Fail(c, err)
		return
	default:
		h.pages.HTML(c, http.StatusOK, "Пароль изменён", "password_reset_complete", nil)
		return
	}
	h.pages.HTML(c, http.StatusOK, "Введите новый пароль", "password_reset_confirm", data)
}
