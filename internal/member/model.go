package member

import (
	"time"

	"gorm.io/gorm"
)

// Member 定义了社区成员在数据库中的持久化模型。
// 浏览器首次访问时只持有一个临时的cookie UUID；
// 第一次执行需要记账的操作（建榜单、投票、提交竞猜）时才会落库。
type Member struct {
	// ID 是成员的数字主键，榜单归属和投票名单都引用它。
	ID uint `gorm:"primarykey"`

	// UUID 来自客户端Cookie，是成员面向外部的身份。
	UUID string `gorm:"uniqueIndex;type:varchar(36);not null"`

	// DisplayName 是对外展示的名字，默认为空。
	DisplayName string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
