package model

import "time"

// Follow user 关注 author，(user_id, author_id) 唯一
type Follow struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_follow_user_author"`
	AuthorID  uint64 `gorm:"not null;uniqueIndex:uk_follow_user_author;index:idx_follow_author"`
	CreatedAt time.Time
}

// SocialOutbox 关注事件发件箱，与关注关系在同一事务中写入
type SocialOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // follow / unfollow
	Follower  uint64 `gorm:"not null"`
	Followee  uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SocialOutbox) TableName() string { return "social_outbox" }

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// AllModels 需要自动迁移的全部表
func AllModels() []any {
	return []any{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}, &SocialOutbox{}}
}
