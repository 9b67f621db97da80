package report

import (
	"errors"
	"fmt"

	"github.com/AniTopia/anitopia-backend/internal/toplist"
	"gorm.io/gorm"
)

var (
	// ErrListNotFound 表示被举报的榜单不存在或不是公开的。
	ErrListNotFound = errors.New("举报对象不存在或不可见")
	// ErrReportNotFound 表示举报记录不存在。
	ErrReportNotFound = errors.New("举报记录不存在")
)

// Service 是举报模块的业务层。
type Service struct {
	db *gorm.DB
}

// NewService 创建举报服务。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// File 对一个公开榜单提交举报。
// 草稿榜单对外不可见，不接受举报。
func (s *Service) File(listID, reporterID uint, reason string) (*Report, error) {
	var list toplist.List
	err := s.db.Where("id = ? AND status = ?", listID, toplist.StatusPublic).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询被举报榜单失败: %w", err)
	}

	r := &Report{ListID: listID, ReporterID: reporterID, Reason: reason}
	if err := s.db.Create(r).Error; err != nil {
		return nil, fmt.Errorf("创建举报记录失败: %w", err)
	}
	return r, nil
}

// Open 返回所有待处理的举报，最早的排在最前。
func (s *Service) Open() ([]Report, error) {
	var reports []Report
	err := s.db.Where("resolved = ?", false).Order("created_at ASC").Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("加载待处理举报失败: %w", err)
	}
	return reports, nil
}

// Resolve 将一条举报标记为已处理。
func (s *Service) Resolve(reportID uint) error {
	res := s.db.Model(&Report{}).Where("id = ?", reportID).Update("resolved", true)
	if res.Error != nil {
		return fmt.Errorf("更新举报状态失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}
