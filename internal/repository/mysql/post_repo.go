package mysql

import (
	"context"

	"yatube/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

// PostFilter 帖子列表过滤条件，全部为空表示全站
type PostFilter struct {
	GroupID    uint64
	AuthorID   uint64
	FollowerID uint64 // 只返回该用户关注的作者的帖子
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	return &post, err
}

// Update 只更新可编辑字段，author_id 与 created_at 保持不变
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Model(post).
		Select("text", "group_id", "image").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

// Delete 删除帖子及其评论
func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, id).Error
	})
}

func (r *PostRepository) scoped(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&model.Post{})
	if f.GroupID > 0 {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.AuthorID > 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.FollowerID > 0 {
		authors := r.DB.WithContext(ctx).Model(&model.Follow{}).Select("author_id").Where("user_id = ?", f.FollowerID)
		q = q.Where("author_id IN (?)", authors)
	}
	return q
}

func (r *PostRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var n int64
	err := r.scoped(ctx, f).Count(&n).Error
	return n, err
}

// List 按发布时间倒序，同一时间按主键正序
func (r *PostRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.scoped(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}
