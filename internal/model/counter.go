package model

import "time"

// Counter 点击计数，一行记一次，总数即行数
type Counter struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Count     int       `gorm:"not null;default:1" json:"count"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Counter) TableName() string {
	return "counters"
}
