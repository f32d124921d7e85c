package handler

import (
	"errors"
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/service"
	"yatube/internal/view"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc   *service.UserService
	pages *Pages
}

// LoginReq 登录表单
type LoginReq struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// SignupReq 注册表单
type SignupReq struct {
	Username  string `form:"username"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password1 string `form:"password1"`
	Password2 string `form:"password2"`
}

func NewUserHandler(svc *service.UserService, pages *Pages) *UserHandler {
	return &UserHandler{svc: svc, pages: pages}
}

func (h *UserHandler) LoginForm(c *gin.Context) {
	h.pages.HTML(c, http.StatusOK, "Войти", "login", view.AuthFormData{Next: c.Query("next")})
}

// Login 成功后跳回 next（只接受站内路径），否则回首页
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	bindErr := c.ShouldBind(&req)
	data := view.AuthFormData{Next: req.Next, Username: req.Username}
	if bindErr != nil {
		data.Message = "Введите имя пользователя и пароль."
		h.pages.HTML(c, http.StatusOK, "Войти", "login", data)
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		data.Message = "Пожалуйста, введите правильные имя пользователя и пароль."
		h.pages.HTML(c, http.StatusOK, "Войти", "login", data)
		return
	}
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	middleware.SetAuthCookies(c, pair)
	redirect(c, service.SafeNext(req.Next, "/"))
}

func (h *UserHandler) SignupForm(c *gin.Context) {
	h.pages.HTML(c, http.StatusOK, "Регистрация", "signup", view.AuthFormData{})
}

// Signup 注册后直接登录
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupReq
	bindErr := c.ShouldBind(&req)
	data := view.AuthFormData{Username: req.Username, Email: req.Email}
	if bindErr != nil {
		data.Errors = service.ValidationError{"email": "Введите правильный адрес электронной почты."}
		h.pages.HTML(c, http.StatusOK, "Регистрация", "signup", data)
		return
	}

	ctx := c.Request.Context()
	_, err := h.svc.Signup(ctx, service.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password1,
		Password2: req.Password2,
	})
	var verr service.ValidationError
	if errors.As(err, &verr) {
		data.Errors = verr
		h.pages.HTML(c, http.StatusOK, "Регистрация", "signup", data)
		return
	}
	if err != nil {
		h.pages.Fail(c, err)
		return
	}

	pair, err := h.svc.Login(ctx, req.Username, req.Password1)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	middleware.SetAuthCookies(c, pair)
	redirect(c, "/")
}

// Logout 撤销白名单中的 token 并清理 cookie
func (h *UserHandler) Logout(c *gin.Context) {
	if p := middleware.CurrentPrincipal(c); p.IsAuthenticated() {
		if err := h.svc.Logout(c.Request.Context(), p.UserID); err != nil {
			h.pages.Fail(c, err)
			return
		}
	}
	middleware.ClearAuthCookies(c)
	// 布局按已登出状态渲染
	c.Set(middleware.ContextPrincipalKey, service.Anonymous)
	h.pages.HTML(c, http.StatusOK, "Вы вышли из системы", "logged_out", nil)
}
