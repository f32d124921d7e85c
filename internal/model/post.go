package model

import "time"

type Post struct {
	ID        uint64    `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	AuthorID  uint64    `gorm:"not null;index:idx_author_time,priority:1"`
	Author    User      `gorm:"foreignKey:AuthorID"`
	GroupID   *uint64   `gorm:"index"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image     string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime;index;index:idx_author_time,priority:2"`
}

// String 列表和日志中使用的前 15 个字符
func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > 15 {
		return string(r[:15])
	}
	return p.Text
}

type Comment struct {
	ID        uint64    `gorm:"primaryKey"`
	PostID    uint64    `gorm:"not null;index"`
	AuthorID  uint64    `gorm:"not null;index"`
	Author    User      `gorm:"foreignKey:AuthorID"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
