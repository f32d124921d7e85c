package router

import (
	"yatube/internal/handler"
	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部 handler 和依赖
type Handlers struct {
	Auth     middleware.Authenticator
	Guard    service.Guard
	Pages    *handler.Pages
	Post     *handler.PostHandler
	Comment  *handler.CommentHandler
	Follow   *handler.FollowHandler
	User     *handler.UserHandler
	Email    *handler.EmailHandler
	About    *handler.AboutHandler
	MediaDir string
}

func InitRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.GinZapLogger(), middleware.Recovery(h.Pages.ServerError))
	r.Use(middleware.LoadPrincipal(h.Auth))
	r.NoRoute(h.Pages.NotFound)

	if h.MediaDir != "" {
		r.Static("/media", h.MediaDir)
	}

	login := middleware.RequireLogin(h.Guard)

	// 帖子与 feed
	r.GET("/", h.Post.Index)
	r.GET("/group/:slug/", h.Post.GroupPosts)
	r.GET("/profile/:username/", h.Post.Profile)
	r.GET("/posts/:id/", h.Post.Detail)

	authed := r.Group("/", login)
	{
		authed.GET("/create/", h.Post.CreateForm)
		authed.POST("/create/", h.Post.Create)
		authed.GET("/posts/:id/edit/", h.Post.EditForm)
		authed.POST("/posts/:id/edit/", h.Post.Edit)
		authed.POST("/posts/:id/delete/", h.Post.Delete)
		authed.POST("/posts/:id/comment/", h.Comment.Add)

		authed.GET("/follow/", h.Follow.Index)
		authed.GET("/profile/:username/follow/", h.Follow.Follow)
		authed.GET("/profile/:username/unfollow/", h.Follow.Unfollow)
	}

	// 账号
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/signup/", h.User.SignupForm)
		authGroup.POST("/signup/", h.User.Signup)
		authGroup.GET("/login/", h.User.LoginForm)
		authGroup.POST("/login/", h.User.Login)
		authGroup.GET("/logout/", h.User.Logout)
		authGroup.POST("/logout/", h.User.Logout)
		authGroup.GET("/password_reset/", h.Email.ResetForm)
		authGroup.POST("/password_reset/", h.Email.SendCode)
		authGroup.GET("/reset/", h.Email.ConfirmForm)
		authGroup.POST("/reset/", h.Email.Confirm)
	}

	aboutGroup := r.Group("/about")
	{
		aboutGroup.GET("/author/", h.About.Author)
		aboutGroup.GET("/tech/", h.About.Tech)
	}

	return r
}
