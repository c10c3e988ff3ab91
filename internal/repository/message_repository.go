package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wechat_ai_relay/internal/model"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

// 按去重键查找，未命中返回 nil
func (r *MessageRepository) FindByUserAndRequest(fromUser, request string) (*model.Message, error) {
	var message model.Message
	err := r.DB.Where("from_user = ? AND request = ?", fromUser, request).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// 统计用户某类消息条数，用于额度校验
func (r *MessageRepository) CountByUserAndType(fromUser, aiType string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Message{}).
		Where("from_user = ? AND ai_type = ?", fromUser, aiType).
		Count(&count).Error
	return count, err
}

// CreateIfAbsent 原子占位：靠 (from_user, request_hash) 唯一索引加
// ON CONFLICT DO NOTHING 实现 insert-if-absent，返回是否真正插入。
// 并发的同文案请求只有一个能占到位，摘要列由 BeforeCreate 钩子填充。
func (r *MessageRepository) CreateIfAbsent(message *model.Message) (bool, error) {
	result := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(message)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// 回填 AI 回答并置为已回答，updated_at 随之刷新
func (r *MessageRepository) MarkAnswered(fromUser, request, response string) error {
	return r.DB.Model(&model.Message{}).
		Where("from_user = ? AND request = ?", fromUser, request).
		Updates(map[string]interface{}{
			"response": response,
			"status":   model.MessageStatusAnswered,
		}).Error
}

// 取用户某类消息的最近 limit 条，按更新时间正序（老的在前），用于拼接上下文
func (r *MessageRepository) RecentByUserAndType(fromUser, aiType string, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.DB.Where("from_user = ? AND ai_type = ?", fromUser, aiType).
		Order("updated_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// 删除用户某类全部消息，ai_type 为空的老数据一并清掉，返回删除条数
func (r *MessageRepository) DeleteByUserAndType(fromUser, aiType string) (int64, error) {
	result := r.DB.Where("from_user = ? AND (ai_type = ? OR ai_type IS NULL)", fromUser, aiType).
		Delete(&model.Message{})
	return result.RowsAffected, result.Error
}
