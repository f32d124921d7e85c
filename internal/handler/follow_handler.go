package handler

import (
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/service"
	"yatube/internal/view"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	svc   *service.FollowService
	feeds *service.FeedService
	pages *Pages
}

func NewFollowHandler(svc *service.FollowService, feeds *service.FeedService, pages *Pages) *FollowHandler {
	return &FollowHandler{svc: svc, feeds: feeds, pages: pages}
}

// Index 关注作者的帖子
func (h *FollowHandler) Index(c *gin.Context) {
	viewer := middleware.CurrentPrincipal(c)
	feed, err := h.feeds.Compose(c.Request.Context(), service.FeedRequest{
		Kind:   service.FeedFollowed,
		Viewer: viewer,
		Page:   service.ParsePage(c.Query("page")),
	})
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.HTML(c, http.StatusOK, "Избранные авторы", "follow", view.FeedData{Feed: feed, Viewer: viewer})
}

// Follow 重复关注、关注自己都不报错，始终回到作者主页
func (h *FollowHandler) Follow(c *gin.Context) {
	username := c.Param("username")
	if _, err := h.svc.Follow(c.Request.Context(), middleware.CurrentPrincipal(c), username); err != nil {
		h.pages.Fail(c, err)
		return
	}
	redirect(c, service.ProfileURL(username))
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	if _, err := h.svc.Unfollow(c.Request.Context(), middleware.CurrentPrincipal(c), username); err != nil {
		h.pages.Fail(c, err)
		return
	}
	redirect(c, service.ProfileURL(username))
}
