package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"yatube/internal/pkg"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	principal service.Principal
	pair      *pkg.Pair
	gotAccess string
}

func (f *fakeAuth) Authenticate(_ context.Context, access, _ string) (service.Principal, *pkg.Pair) {
	f.gotAccess = access
	return f.principal, f.pair
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(auth Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(LoadPrincipal(auth))
	r.GET("/open/", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentPrincipal(c).Username)
	})
	r.GET("/create/", RequireLogin(service.NewGuard()), func(c *gin.Context) {
		c.String(http.StatusOK, "form")
	})
	return r
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	r := newEngine(&fakeAuth{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/create/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))
}

func TestRequireLogin_AllowsAuthenticated(t *testing.T) {
	auth := &fakeAuth{principal: service.Principal{UserID: 1, Username: "leo"}}
	r := newEngine(auth)

	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "tok"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "form", w.Body.String())
	assert.Equal(t, "tok", auth.gotAccess)
}

func TestLoadPrincipal_WritesRefreshedCookies(t *testing.T) {
	auth := &fakeAuth{
		principal: service.Principal{UserID: 1, Username: "leo"},
		pair:      &pkg.Pair{AccessToken: "new-access", RefreshToken: "new-refresh"},
	}
	r := newEngine(auth)

	req := httptest.NewRequest(http.MethodGet, "/open/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "old"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leo", w.Body.String())

	cookies := map[string]string{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck.Value
	}
	assert.Equal(t, "new-access", cookies[AccessCookie])
	assert.Equal(t, "new-refresh", cookies[RefreshCookie])
}

func TestLoadPrincipal_ClearsStaleCookies(t *testing.T) {
	r := newEngine(&fakeAuth{})

	req := httptest.NewRequest(http.MethodGet, "/open/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "stale"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	var cleared bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == AccessCookie && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(GinZapLogger(), Recovery(func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "oops")
	}))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "oops", w.Body.String())
}
