package service

import (
	"fmt"
	"net/url"
	"strings"

	"yatube/internal/model"
)

const LoginPath = "/auth/login/"

// Principal 当前请求的身份，UserID 为 0 表示匿名
type Principal struct {
	UserID   uint64
	Username string
}

var Anonymous = Principal{}

func (p Principal) IsAuthenticated() bool { return p.UserID != 0 }

// Decision 授权结果：放行，或重定向到 RedirectTo
type Decision struct {
	Allowed    bool
	RedirectTo string
}

func Allow() Decision { return Decision{Allowed: true} }

func RedirectTo(target string) Decision { return Decision{RedirectTo: target} }

// Guard 所有写操作入口共用的授权判断
type Guard struct {
	LoginPath string
}

func NewGuard() Guard { return Guard{LoginPath: LoginPath} }

// RequireAuthentication 匿名用户被送去登录页，next 为原始目标
func (g Guard) RequireAuthentication(p Principal, next string) Decision {
	if p.IsAuthenticated() {
		return Allow()
	}
	return RedirectTo(LoginURL(g.LoginPath, next))
}

// CanMutatePost 只有作者本人可以修改；其他人静默回到帖子详情页
func (g Guard) CanMutatePost(p Principal, post *model.Post) Decision {
	if CanMutatePost(p, post) {
		return Allow()
	}
	return RedirectTo(PostURL(post.ID))
}

func CanMutatePost(p Principal, post *model.Post) bool {
	return p.IsAuthenticated() && post != nil && p.UserID == post.AuthorID
}

// LoginURL /auth/login/?next=/create/，next 中的 / 保持原样
func LoginURL(loginPath, next string) string {
	if next == "" {
		return loginPath
	}
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext 只接受站内相对路径，防止开放重定向
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}

func PostURL(id uint64) string { return fmt.Sprintf("/posts/%d/", id) }

func ProfileURL(username string) string { return "/profile/" + url.PathEscape(username) + "/" }

func GroupURL(slug string) string { return "/group/" + url.PathEscape(slug) + "/" }
