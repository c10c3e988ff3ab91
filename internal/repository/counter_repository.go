package repository

import (
	"gorm.io/gorm"

	"wechat_ai_relay/internal/model"
)

type CounterRepository struct {
	DB *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{DB: db}
}

// 加一次计数（插入一行）
func (r *CounterRepository) Increment() error {
	return r.DB.Create(&model.Counter{Count: 1}).Error
}

// 清零（清空整表）
func (r *CounterRepository) Clear() error {
	return r.DB.Exec("TRUNCATE TABLE counters").Error
}

func (r *CounterRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Counter{}).Count(&count).Error
	return count, err
}
