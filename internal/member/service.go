package member

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 是成员模块的业务层。
type Service struct {
	db *gorm.DB
}

// NewService 创建成员服务。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// IsValidUUID 校验cookie中携带的身份串是否是合法UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// CreateProvisionalID 生成一个临时的、尚未落库的成员UUID。
// 它会被写入cookie，直到成员第一次执行记账操作才会被激活。
func CreateProvisionalID() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// Activate 确保UUID对应的成员存在于数据库中，返回其数字ID。
// 幂等：成员已存在时直接返回现有ID。
func (s *Service) Activate(uuidStr string) (uint, error) {
	if !IsValidUUID(uuidStr) {
		return 0, fmt.Errorf("无效的成员UUID: %s", uuidStr)
	}

	var m Member
	err := s.db.Where("uuid = ?", uuidStr).First(&m).Error
	if err == nil {
		return m.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询成员失败: %w", err)
	}

	m = Member{UUID: uuidStr}
	if err := s.db.Create(&m).Error; err != nil {
		// 并发激活时另一请求可能已抢先落库，重查一次即可
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.Where("uuid = ?", uuidStr).First(&m).Error; err != nil {
				return 0, fmt.Errorf("重查已激活成员失败: %w", err)
			}
			return m.ID, nil
		}
		return 0, fmt.Errorf("无法创建成员: %w", err)
	}
	return m.ID, nil
}

// ResolveID 查找UUID对应的数字成员ID。未激活的成员返回0，不算错误。
func (s *Service) ResolveID(uuidStr string) (uint, error) {
	if !IsValidUUID(uuidStr) {
		return 0, nil
	}
	var m Member
	err := s.db.Select("id").Where("uuid = ?", uuidStr).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("解析成员ID失败: %w", err)
	}
	return m.ID, nil
}

// Summaries 批量查询成员的展示信息，返回 id -> displayName 的映射。
// 没有昵称的成员映射为空串，由展示层决定兜底文案。
func (s *Service) Summaries(ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []Member
	if err := s.db.Select("id", "display_name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("批量查询成员信息失败: %w", err)
	}
	for _, row := range rows {
		names[row.ID] = row.DisplayName
	}
	return names, nil
}
