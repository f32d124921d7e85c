package service

import (
	"context"
	"fmt"
	"strings"

	"yatube/internal/model"
	"yatube/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommentService struct {
	repo  *mysql.CommentRepository
	posts *mysql.PostRepository
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		repo:  &mysql.CommentRepository{DB: db},
		posts: &mysql.PostRepository{DB: db},
	}
}

// Add 帖子不存在返回 ErrNotFound；空文本返回 ValidationError 且不写库
func (s *CommentService) Add(ctx context.Context, p Principal, postID uint64, text string) (*model.Comment, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, notFound(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ValidationError{"text": "Обязательное поле."}
	}
	c := &model.Comment{PostID: post.ID, AuthorID: p.UserID, Text: text}
	if err = s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}
