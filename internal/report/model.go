package report

import "gorm.io/gorm"

// Report 定义了成员对公开榜单的举报记录。
// 举报只进入待处理队列，不自动对榜单本体做任何处置。
type Report struct {
	gorm.Model

	// ListID 是被举报的榜单。
	ListID uint `gorm:"index;not null"`

	// ReporterID 是发起举报的成员。
	ReporterID uint `gorm:"index;not null"`

	// Reason 是举报理由的自由文本。
	Reason string `gorm:"not null"`

	// Resolved 标记管理员是否已处理。
	Resolved bool `gorm:"index"`
}
