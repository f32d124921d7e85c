package view

import (
	"yatube/internal/model"
	"yatube/internal/service"
)

// FeedData index / group_list / profile / follow 共用
type FeedData struct {
	Feed      *service.Feed
	Viewer    service.Principal
	Following bool
}

type PostDetailData struct {
	Detail      *service.PostDetail
	CanEdit     bool
	CommentText string
	Errors      service.ValidationError
	Viewer      service.Principal
}

type PostFormData struct {
	IsEdit  bool
	PostID  uint64
	Text    string
	GroupID uint64
	Image   string
	Groups  []model.Group
	Errors  service.ValidationError
}

// AuthFormData 登录、注册、重置密码表单
type AuthFormData struct {
	Next     string
	Username string
	Email    string
	Message  string
	Errors   service.ValidationError
}

type ErrorData struct {
	Path string
}
