package domain

import "time"

// Subscriber 订阅者（实体），只要求有稳定的 ID
type Subscriber struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"type:varchar(254);uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 返回表名
func (Subscriber) TableName() string {
	return "subscribers"
}
