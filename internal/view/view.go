// Package view 服务端渲染的 HTML 模板
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path"
	"strings"
	"time"

	"yatube/internal/service"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var FS embed.FS

// 用户输入的正文只保留纯文本，输出已转义
var strictPolicy = bluemonday.StrictPolicy()

// Linebreaks 清洗文本后按行转成 <br>，空行分段
func Linebreaks(text string) template.HTML {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	paras := strings.Split(strings.TrimSpace(text), "\n\n")
	var b strings.Builder
	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lines := strings.Split(p, "\n")
		for i, l := range lines {
			lines[i] = strictPolicy.Sanitize(l)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

// Truncatewords 保留前 n 个词
func Truncatewords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

func mediaURL(p string) string {
	if p == "" {
		return ""
	}
	return "/media/" + path.Clean(p)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

var funcs = template.FuncMap{
	"linebreaks":    Linebreaks,
	"truncatewords": Truncatewords,
	"media":         mediaURL,
	"date":          formatDate,
	"postURL":       service.PostURL,
	"profileURL":    service.ProfileURL,
	"groupURL":      service.GroupURL,
}

// Layout 外层页面的数据；Content 是已经渲染好的正文
type Layout struct {
	Title     string
	Principal service.Principal
	Path      string
	Content   template.HTML
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(FS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustNew 模板随二进制嵌入，解析失败只可能是开发期错误
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render 执行名为 name 的模板，返回渲染结果
func (r *Renderer) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page 把正文包进 base 布局。布局含当前用户的导航，所以永远不进页面缓存
func (r *Renderer) Page(layout Layout) ([]byte, error) {
	return r.Render("base", layout)
}
