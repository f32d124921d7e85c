package middleware

import (
	"context"
	"net/http"

	"yatube/internal/pkg"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ContextPrincipalKey = "principal"

	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Authenticator 由 cookie 中的 token 还原身份，access 被刷新时返回新 pair
type Authenticator interface {
	Authenticate(ctx context.Context, access, refresh string) (service.Principal, *pkg.Pair)
}

// LoadPrincipal 每个请求都解析一次身份；失败不拦截，按匿名继续
func LoadPrincipal(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, _ := c.Cookie(AccessCookie)
		refresh, _ := c.Cookie(RefreshCookie)

		p, pair := auth.Authenticate(c.Request.Context(), access, refresh)
		if pair != nil {
			SetAuthCookies(c, pair)
		} else if !p.IsAuthenticated() && (access != "" || refresh != "") {
			// token 已失效（在别处登录、已登出或过期），清掉避免每次都校验
			ClearAuthCookies(c)
		}

		c.Set(ContextPrincipalKey, p)
		c.Next()
	}
}

// RequireLogin 匿名用户 302 到登录页，next 为完整的原始地址
func RequireLogin(guard service.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := guard.RequireAuthentication(CurrentPrincipal(c), c.Request.URL.RequestURI())
		if !d.Allowed {
			c.Redirect(http.StatusFound, d.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentPrincipal(c *gin.Context) service.Principal {
	if v, ok := c.Get(ContextPrincipalKey); ok {
		if p, ok := v.(service.Principal); ok {
			return p
		}
	}
	return service.Anonymous
}

func SetAuthCookies(c *gin.Context, pair *pkg.Pair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, pair.AccessToken, int(pkg.RefreshTTL.Seconds()), "/", "", false, true)
	c.SetCookie(RefreshCookie, pair.RefreshToken, int(pkg.RefreshTTL.Seconds()), "/", "", false, true)
}

func ClearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", "", false, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", false, true)
}
