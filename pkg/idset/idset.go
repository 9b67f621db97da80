// Package idset 提供一个以CSV形式持久化的有序id集合。
// 投票名单等以逗号分隔字符串存储的id集合都经由它读写，
// 保证序列化结果有序、无重复、可逐字节比较。
package idset

import (
	"sort"
	"strconv"
	"strings"
)

// Set 是一个uint id的集合。零值不可用，请通过New或Parse创建。
type Set struct {
	members map[uint]struct{}
}

// New 创建一个空集合。
func New() *Set {
	return &Set{members: make(map[uint]struct{})}
}

// Parse 从CSV字符串反序列化集合。
// 空白片段和非法数字被静默丢弃，解析永远不会失败。
func Parse(csv string) *Set {
	s := New()
	if csv == "" {
		return s
	}
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		s.members[uint(id)] = struct{}{}
	}
	return s
}

// Add 把id加入集合，已存在时无副作用。
func (s *Set) Add(id uint) {
	s.members[id] = struct{}{}
}

// Remove 把id移出集合，不存在时无副作用。
func (s *Set) Remove(id uint) {
	delete(s.members, id)
}

// Toggle 翻转id的成员资格，返回翻转后是否在集合中。
func (s *Set) Toggle(id uint) bool {
	if s.Contains(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// Contains 判断id是否在集合中。
func (s *Set) Contains(id uint) bool {
	_, ok := s.members[id]
	return ok
}

// Len 返回集合大小。
func (s *Set) Len() int {
	return len(s.members)
}

// IDs 返回升序排列的成员id切片。
func (s *Set) IDs() []uint {
	ids := make([]uint, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// String 序列化为升序CSV。空集合序列化为空串。
func (s *Set) String() string {
	ids := s.IDs()
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
