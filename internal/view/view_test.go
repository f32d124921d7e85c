package view

import (
	"testing"
	"time"

	"yatube/internal/model"
	"yatube/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinebreaks(t *testing.T) {
	assert.Equal(t, "<p>a<br>b</p><p>c</p>", string(Linebreaks("a\nb\n\nc")))
	assert.Equal(t, "<p>x</p>", string(Linebreaks("<script>alert(1)</script>x")))
	assert.Equal(t, "<p>1 &lt; 2</p>", string(Linebreaks("1 < 2")))
	assert.Empty(t, string(Linebreaks("  ")))
}

func TestTruncatewords(t *testing.T) {
	assert.Equal(t, "one two", Truncatewords("one  two", 5))
	assert.Equal(t, "one two …", Truncatewords("one two three", 2))
}

func TestRenderer_Index(t *testing.T) {
	r := MustNew()
	author := model.User{ID: 1, Username: "auth"}
	group := &model.Group{ID: 1, Title: "Тестовая группа", Slug: "test-slug"}
	posts := []model.Post{
		{ID: 2, Text: "Второй пост", AuthorID: 1, Author: author, Group: group, CreatedAt: time.Now()},
		{ID: 1, Text: "Первый пост", AuthorID: 1, Author: author, CreatedAt: time.Now()},
	}
	feed := &service.Feed{Kind: service.FeedGlobal, Page: service.Page{Items: posts, Number: 1, NumPages: 2, Total: 12}}

	body, err := r.Render("index", FeedData{Feed: feed})
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, "Второй пост")
	assert.Contains(t, html, `href="/posts/2/"`)
	assert.Contains(t, html, `href="/group/test-slug/"`)
	assert.Contains(t, html, `href="/profile/auth/"`)
	assert.Contains(t, html, `href="?page=2"`)
}

func TestRenderer_PageWrapsLayout(t *testing.T) {
	r := MustNew()
	anon, err := r.Page(Layout{Title: "Главная", Content: "<p>body</p>"})
	require.NoError(t, err)
	assert.Contains(t, string(anon), "<p>body</p>")
	assert.Contains(t, string(anon), "/auth/login/")
	assert.NotContains(t, string(anon), "/create/")

	user, err := r.Page(Layout{Title: "Главная", Principal: service.Principal{UserID: 1, Username: "leo"}, Content: "<p>body</p>"})
	require.NoError(t, err)
	assert.Contains(t, string(user), "/create/")
	assert.Contains(t, string(user), "/profile/leo/")
}

func TestRenderer_AllTemplatesExecute(t *testing.T) {
	r := MustNew()
	post := &model.Post{ID: 3, Text: "text", Author: model.User{Username: "auth"}}
	cases := map[string]any{
		"post_detail":             PostDetailData{Detail: &service.PostDetail{Post: post}, CanEdit: true, Viewer: service.Principal{UserID: 1}},
		"create_post":             PostFormData{IsEdit: true, PostID: 3, Groups: []model.Group{{ID: 1, Title: "g"}}, GroupID: 1},
		"profile":                 FeedData{Feed: &service.Feed{Author: &model.User{ID: 2, Username: "auth"}, Page: service.Page{Number: 1, NumPages: 1}}, Viewer: service.Principal{UserID: 1}},
		"group_list":              FeedData{Feed: &service.Feed{Group: &model.Group{Title: "g"}, Page: service.Page{Number: 1, NumPages: 1}}},
		"follow":                  FeedData{Feed: &service.Feed{Page: service.Page{Number: 1, NumPages: 1}}},
		"login":                   AuthFormData{Next: "/create/"},
		"signup":                  AuthFormData{Errors: service.ValidationError{"username": "taken"}},
		"password_reset":          AuthFormData{},
		"password_reset_confirm":  AuthFormData{Email: "a@example.com"},
		"password_reset_complete": nil,
		"logged_out":              nil,
		"about_author":            nil,
		"about_tech":              nil,
		"not_found":               ErrorData{Path: "/missing/"},
		"server_error":            nil,
	}
	for name, data := range cases {
		_, err := r.Render(name, data)
		assert.NoError(t, err, name)
	}

	detail, err := r.Render("post_detail", cases["post_detail"])
	require.NoError(t, err)
	assert.Contains(t, string(detail), `href="/posts/3/edit/"`)

	form, err := r.Render("create_post", cases["create_post"])
	require.NoError(t, err)
	assert.Contains(t, string(form), `<option value="1" selected>`)
}
