package domain

import "time"

// SubscriptionGroup 订阅组：一组序列共享同一个用户级订阅状态
type SubscriptionGroup struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"` // 组标识符（symbol）
	Title         string    `json:"title"`
	Autosubscribe bool      `json:"autosubscribe" gorm:"not null;default:false"` // 新建聚合订阅的默认状态
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName 返回表名
func (SubscriptionGroup) TableName() string {
	return "subscription_groups"
}

// GroupDetail 订阅组及其下属的序列和单次邮件
type GroupDetail struct {
	SubscriptionGroup
	Sequences []Sequence `json:"sequences"`
	Mailings  []Mailing  `json:"mailings"`
}
