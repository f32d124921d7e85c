package model

// Group 帖子分组，slug 作为 URL 中的唯一键
type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
}

func (g Group) String() string { return g.Title }
