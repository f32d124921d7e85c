package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"yatube/internal/cache"
	"yatube/internal/middleware"
	"yatube/internal/model"
	"yatube/internal/service"
	"yatube/internal/view"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts   *service.PostService
	feeds   *service.FeedService
	follows *service.FollowService
	cache   *cache.PageCache
	guard   service.Guard
	pages   *Pages
}

// PostForm 创建和编辑共用；图片单独从 multipart 中取
type PostForm struct {
	Text  string `form:"text" binding:"required"`
	Group string `form:"group"`
}

func NewPostHandler(posts *service.PostService, feeds *service.FeedService, follows *service.FollowService,
	pageCache *cache.PageCache, guard service.Guard, pages *Pages) *PostHandler {
	return &PostHandler{
		posts:   posts,
		feeds:   feeds,
		follows: follows,
		cache:   pageCache,
		guard:   guard,
		pages:   pages,
	}
}

// Index 全站 feed。只缓存帖子列表片段，布局每次按当前用户渲染
func (h *PostHandler) Index(c *gin.Context) {
	page := service.ParsePage(c.Query("page"))
	key := cache.Key(string(service.FeedGlobal), page)

	body, err := h.cache.GetOrRender(c.Request.Context(), key, func(ctx context.Context) ([]byte, error) {
		feed, err := h.feeds.Compose(ctx, service.FeedRequest{Kind: service.FeedGlobal, Page: page})
		if err != nil {
			return nil, err
		}
		return h.pages.view.Render("index", view.FeedData{Feed: feed})
	})
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.Wrap(c, http.StatusOK, "Последние обновления на сайте", body)
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	feed, err := h.feeds.Compose(c.Request.Context(), service.FeedRequest{
		Kind: service.FeedGroup,
		Key:  c.Param("slug"),
		Page: service.ParsePage(c.Query("page")),
	})
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.HTML(c, http.StatusOK, "Записи сообщества "+feed.Group.Title, "group_list", view.FeedData{Feed: feed})
}

func (h *PostHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.CurrentPrincipal(c)
	feed, err := h.feeds.Compose(ctx, service.FeedRequest{
		Kind: service.FeedProfile,
		Key:  c.Param("username"),
		Page: service.ParsePage(c.Query("page")),
	})
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	following, err := h.follows.IsFollowing(ctx, viewer, feed.Author.ID)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.HTML(c, http.StatusOK, "Профайл пользователя "+feed.Author.Username, "profile", view.FeedData{
		Feed:      feed,
		Viewer:    viewer,
		Following: following,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, err := postID(c)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	detail, err := h.posts.Detail(c.Request.Context(), id)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	viewer := middleware.CurrentPrincipal(c)
	h.pages.HTML(c, http.StatusOK, "Пост "+detail.Post.String(), "post_detail", view.PostDetailData{
		Detail:  detail,
		CanEdit: service.CanMutatePost(viewer, detail.Post),
		Viewer:  viewer,
	})
}

// bindPost 表单层校验；文本的去空白和分组是否存在由 service 判断
func (h *PostHandler) bindPost(c *gin.Context, data *view.PostFormData) (service.PostInput, error) {
	var form PostForm
	errs := service.ValidationError{}
	if err := c.ShouldBind(&form); err != nil {
		errs["text"] = "Обязательное поле."
	}
	data.Text = form.Text

	in := service.PostInput{Text: form.Text}
	if form.Group != "" {
		id, err := strconv.ParseUint(form.Group, 10, 64)
		if err != nil {
			errs["group"] = "Выберите корректный вариант."
		} else {
			in.GroupID = id
			data.GroupID = id
		}
	}
	if fh, err := c.FormFile("image"); err == nil {
		in.Image = fh
	}
	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}

// renderForm 校验失败时原样回显，状态码仍为 200
func (h *PostHandler) renderForm(c *gin.Context, data view.PostFormData) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	data.Groups = groups
	title := "Новый пост"
	if data.IsEdit {
		title = "Редактировать пост"
	}
	h.pages.HTML(c, http.StatusOK, title, "create_post", data)
}

// formError 校验错误回显表单并返回 true，其它错误已处理也返回 true
func (h *PostHandler) formError(c *gin.Context, data view.PostFormData, err error) bool {
	if err == nil {
		return false
	}
	var verr service.ValidationError
	if errors.As(err, &verr) {
		data.Errors = verr
		h.renderForm(c, data)
		return true
	}
	h.pages.Fail(c, err)
	return true
}

func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, view.PostFormData{})
}

func (h *PostHandler) Create(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	var data view.PostFormData
	in, err := h.bindPost(c, &data)
	if h.formError(c, data, err) {
		return
	}
	_, err = h.posts.Create(c.Request.Context(), p, in)
	if h.formError(c, data, err) {
		return
	}
	redirect(c, service.ProfileURL(p.Username))
}

// ownPost 取帖子并做作者校验；返回 nil 表示已经响应
func (h *PostHandler) ownPost(c *gin.Context) *model.Post {
	id, err := postID(c)
	if err != nil {
		h.pages.Fail(c, err)
		return nil
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.pages.Fail(c, err)
		return nil
	}
	if d := h.guard.CanMutatePost(middleware.CurrentPrincipal(c), post); !d.Allowed {
		redirect(c, d.RedirectTo)
		return nil
	}
	return post
}

func (h *PostHandler) EditForm(c *gin.Context) {
	post := h.ownPost(c)
	if post == nil {
		return
	}
	h.renderForm(c, editFormData(post))
}

// editFormData 编辑表单绑定帖子当前保存的内容
func editFormData(post *model.Post) view.PostFormData {
	data := view.PostFormData{IsEdit: true, PostID: post.ID, Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		data.GroupID = *post.GroupID
	}
	return data
}

func (h *PostHandler) Edit(c *gin.Context) {
	post := h.ownPost(c)
	if post == nil {
		return
	}
	// 校验失败时回显已保存的帖子；Update 会就地修改 post，所以先取出
	stored := editFormData(post)
	in, err := h.bindPost(c, &view.PostFormData{})
	if h.formError(c, stored, err) {
		return
	}
	if h.formError(c, stored, h.posts.Update(c.Request.Context(), post, in)) {
		return
	}
	redirect(c, service.PostURL(post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	post := h.ownPost(c)
	if post == nil {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), post); err != nil {
		h.pages.Fail(c, err)
		return
	}
	redirect(c, service.ProfileURL(middleware.CurrentPrincipal(c).Username))
}
