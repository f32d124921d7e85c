package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/mysql"

	"gorm.io/gorm"
)

// PostInput 创建和编辑共用的表单数据；GroupID 为 0 表示不属于任何分组
type PostInput struct {
	Text    string
	GroupID uint64
	Image   *multipart.FileHeader
}

type PostDetail struct {
	Post            *model.Post
	AuthorPostCount int64
	Comments        []model.Comment
}

type PostService struct {
	repo     *mysql.PostRepository
	groups   *mysql.GroupRepository
	comments *mysql.CommentRepository
	images   pkg.ImageStore
}

func NewPostService(db *gorm.DB, images pkg.ImageStore) *PostService {
	return &PostService{
		repo:     &mysql.PostRepository{DB: db},
		groups:   &mysql.GroupRepository{DB: db},
		comments: &mysql.CommentRepository{DB: db},
		images:   images,
	}
}

func (s *PostService) Get(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

// Detail 帖子、作者的帖子总数、按时间正序的评论
func (s *PostService) Detail(ctx context.Context, id uint64) (*PostDetail, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Count(ctx, mysql.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, AuthorPostCount: count, Comments: comments}, nil
}

// Groups 表单中的分组选项
func (s *PostService) Groups(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

// apply 校验表单并写入 post；图片只在上传了新文件时替换
func (s *PostService) apply(ctx context.Context, post *model.Post, in PostInput) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return ValidationError{"text": "Обязательное поле."}
	}
	post.Text = text

	post.GroupID, post.Group = nil, nil
	if in.GroupID != 0 {
		group, err := s.groups.FindByID(ctx, in.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ValidationError{"group": "Выберите корректный вариант."}
			}
			return err
		}
		post.GroupID, post.Group = &group.ID, group
	}

	if in.Image != nil {
		path, err := s.images.Save(ctx, in.Image)
		if err != nil {
			return ValidationError{"image": err.Error()}
		}
		post.Image = path
	}
	return nil
}

// Create 作者为当前用户，created_at 由存储层写入
func (s *PostService) Create(ctx context.Context, p Principal, in PostInput) (*model.Post, error) {
	post := &model.Post{AuthorID: p.UserID}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	group := post.Group
	post.Group = nil
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Group = group
	return post, nil
}

// Update 调用方负责先经过 Guard.CanMutatePost
func (s *PostService) Update(ctx context.Context, post *model.Post, in PostInput) error {
	if err := s.apply(ctx, post, in); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, post); err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return nil
}

func (s *PostService) Delete(ctx context.Context, post *model.Post) error {
	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("delete post %d: %w", post.ID, err)
	}
	return nil
}
