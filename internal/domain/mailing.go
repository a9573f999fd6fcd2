package domain

import "time"

// Mailing 单次发送的邮件，可归属于订阅组
type Mailing struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	Title     string    `json:"title"`
	GroupID   *string   `json:"groupId,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 返回表名
func (Mailing) TableName() string {
	return "mailings"
}
