package handler

import (
	"errors"

	"yatube/internal/middleware"
	"yatube/internal/pkg/logger"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	svc   *service.CommentService
	pages *Pages
}

type CommentForm struct {
	Text string `form:"text"`
}

func NewCommentHandler(svc *service.CommentService, pages *Pages) *CommentHandler {
	return &CommentHandler{svc: svc, pages: pages}
}

// Add 无论评论是否有效都回到帖子详情页
func (h *CommentHandler) Add(c *gin.Context) {
	id, err := postID(c)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	var form CommentForm
	if err = c.ShouldBind(&form); err != nil {
		// 表单解析失败按空评论处理：不写库，回到详情页
		logger.L.Warn("comment form bind failed", zap.Uint64("post_id", id), zap.Error(err))
		redirect(c, service.PostURL(id))
		return
	}

	_, err = h.svc.Add(c.Request.Context(), middleware.CurrentPrincipal(c), id, form.Text)
	var verr service.ValidationError
	if err != nil && !errors.As(err, &verr) {
		h.pages.Fail(c, err)
		return
	}
	redirect(c, service.PostURL(id))
}
