// Package testutil 测试用的 SQLite / miniredis 环境和数据构造函数
package testutil

import (
	"context"
	"testing"
	"time"

	"yatube/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB 每个测试一个独立的内存库，单连接保证所有查询落在同一个库上
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// NewRedis 启动 miniredis 并返回连接它的客户端
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Password: "x", Email: username + "@example.com"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return u
}

func CreateGroup(t *testing.T, db *gorm.DB, slug string) *model.Group {
	t.Helper()
	g := &model.Group{Title: "Тестовый заголовок", Slug: slug, Description: "Тестовое описание"}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("Failed to create group %s: %v", slug, err)
	}
	return g
}

// CreatePost created 为零值时使用当前时间
func CreatePost(t *testing.T, db *gorm.DB, author *model.User, group *model.Group, text string, created time.Time) *model.Post {
	t.Helper()
	p := &model.Post{Text: text, AuthorID: author.ID, CreatedAt: created}
	if group != nil {
		p.GroupID = &group.ID
	}
	if err := db.WithContext(context.Background()).Create(p).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return p
}
