package service

import (
	"context"
	"fmt"

	"yatube/internal/model"
	"yatube/internal/repository/mysql"

	"gorm.io/gorm"
)

type FeedKind string

const (
	FeedGlobal   FeedKind = "index"
	FeedGroup    FeedKind = "group"
	FeedProfile  FeedKind = "profile"
	FeedFollowed FeedKind = "follow"
)

// FeedRequest Key 对 group 是 slug，对 profile 是用户名；followed 使用 Viewer
type FeedRequest struct {
	Kind   FeedKind
	Key    string
	Viewer Principal
	Page   int
}

type Feed struct {
	Kind   FeedKind
	Page   Page
	Group  *model.Group
	Author *model.User
}

// FeedService 组合四种 feed：全站、分组、作者主页、关注
type FeedService struct {
	posts  *mysql.PostRepository
	groups *mysql.GroupRepository
	users  *mysql.UserRepository
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		posts:  &mysql.PostRepository{DB: db},
		groups: &mysql.GroupRepository{DB: db},
		users:  &mysql.UserRepository{DB: db},
	}
}

func (s *FeedService) Compose(ctx context.Context, req FeedRequest) (*Feed, error) {
	feed := &Feed{Kind: req.Kind}
	var filter mysql.PostFilter

	switch req.Kind {
	case FeedGlobal:
	case FeedGroup:
		group, err := s.groups.FindBySlug(ctx, req.Key)
		if err != nil {
			return nil, notFound(err)
		}
		feed.Group = group
		filter.GroupID = group.ID
	case FeedProfile:
		author, err := s.users.FindByUsername(ctx, req.Key)
		if err != nil {
			return nil, notFound(err)
		}
		feed.Author = author
		filter.AuthorID = author.ID
	case FeedFollowed:
		if !req.Viewer.IsAuthenticated() {
			// 匿名用户没有关注任何人
			feed.Page = Page{Number: 1, NumPages: 1}
			return feed, nil
		}
		filter.FollowerID = req.Viewer.UserID
	default:
		return nil, fmt.Errorf("unknown feed kind %q", req.Kind)
	}

	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	number, numPages, offset := Paginate(total, req.Page)
	items, err := s.posts.List(ctx, filter, offset, PostsPerPage)
	if err != nil {
		return nil, err
	}
	feed.Page = Page{Items: items, Number: number, NumPages: numPages, Total: total}
	return feed, nil
}
