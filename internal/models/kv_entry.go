package models

import "time"

// KVEntry 键值存储表（database 存储后端使用）
type KVEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`                               // 主键
	Key       string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"key"` // 完整键（含客户端命名空间）
	Value     string    `gorm:"type:text;not null" json:"value"`                   // 序列化后的值
	CreatedAt time.Time `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                           // 更新时间
}

// TableName 指定表名
func (KVEntry) TableName() string {
	return "kv_entries"
}
