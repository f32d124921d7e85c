package handler

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"yatube/internal/middleware"
	"yatube/internal/pkg/logger"
	"yatube/internal/service"
	"yatube/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const htmlContentType = "text/html; charset=utf-8"

// Pages 渲染正文并套上带当前用户导航的布局
type Pages struct {
	view *view.Renderer
}

func NewPages(v *view.Renderer) *Pages {
	return &Pages{view: v}
}

// HTML 渲染模板 name 作为正文
func (p *Pages) HTML(c *gin.Context, status int, title, name string, data any) {
	body, err := p.view.Render(name, data)
	if err != nil {
		p.Fail(c, err)
		return
	}
	p.Wrap(c, status, title, body)
}

// Wrap 正文已经渲染好（例如来自页面缓存）
func (p *Pages) Wrap(c *gin.Context, status int, title string, body []byte) {
	page, err := p.view.Page(view.Layout{
		Title:     title,
		Principal: middleware.CurrentPrincipal(c),
		Path:      c.Request.URL.Path,
		Content:   template.HTML(body),
	})
	if err != nil {
		_ = c.Error(err)
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Internal Server Error"))
		return
	}
	c.Data(status, htmlContentType, page)
}

func (p *Pages) NotFound(c *gin.Context) {
	p.HTML(c, http.StatusNotFound, "Страница не найдена", "not_found", view.ErrorData{Path: c.Request.URL.Path})
}

func (p *Pages) ServerError(c *gin.Context) {
	body, err := p.view.Render("server_error", nil)
	if err != nil {
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Internal Server Error"))
		return
	}
	p.Wrap(c, http.StatusInternalServerError, "Ошибка сервера", body)
}

// Fail ErrNotFound 渲染 404，其它错误记到 gin 上下文并返回 500
func (p *Pages) Fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		p.NotFound(c)
		return
	}
	_ = c.Error(err)
	logger.L.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	p.ServerError(c)
}

func redirect(c *gin.Context, target string) {
	c.Redirect(http.StatusFound, target)
}

// postID 非数字的 id 与不存在的 id 一样是 404
func postID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}
