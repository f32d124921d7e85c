package service

import (
	"context"
	"fmt"

	"yatube/internal/config"
	"yatube/internal/model"
	"yatube/internal/repository/mysql"

	"gorm.io/gorm"
)

// GroupService 分组只在启动时按配置写入，运行期只读
type GroupService struct {
	repo *mysql.GroupRepository
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{repo: &mysql.GroupRepository{DB: db}}
}

func (s *GroupService) Seed(ctx context.Context, seeds []config.GroupSeed) error {
	for _, g := range seeds {
		if g.Slug == "" || g.Title == "" {
			return fmt.Errorf("group seed requires title and slug: %+v", g)
		}
		if err := s.repo.Upsert(ctx, &model.Group{Title: g.Title, Slug: g.Slug, Description: g.Description}); err != nil {
			return fmt.Errorf("seed group %s: %w", g.Slug, err)
		}
	}
	return nil
}
