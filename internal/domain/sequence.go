package domain

import "time"

// Sequence 邮件序列（营销活动）
//
// 当 GroupID 非空时，序列的订阅状态由订阅组的聚合订阅决定，
// 此时序列自身的 Autosubscribe 不生效。
type Sequence struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	Title         string    `json:"title"`
	GroupID       *string   `json:"groupId,omitempty" gorm:"type:varchar(36);index"` // 所属订阅组（可选）
	Autosubscribe bool      `json:"autosubscribe" gorm:"not null;default:false"`     // 仅在未分组时使用
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName 返回表名
func (Sequence) TableName() string {
	return "sequences"
}

// Grouped 序列是否属于某个订阅组
func (s *Sequence) Grouped() bool {
	return s.GroupID != nil && *s.GroupID != ""
}
