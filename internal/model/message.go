package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// 消息状态：AI 回答中 / 已回答
const (
	MessageStatusThinking = "THINKING"
	MessageStatusAnswered = "ANSWERED"
)

// AI 能力类型：文本（ChatGPT）/ 图片（DALL·E）
const (
	AITypeText  = "TEXT"
	AITypeImage = "IMAGE"
)

// 请求与回答列的存储上限（字符数）
const (
	MaxRequestLen  = 2048
	MaxResponseLen = 2048
)

// Message 一轮对话记录：用户提问 + AI 回答。
// 去重键是 (用户, 请求全文)，同一用户重复发送同一段文字命中同一条记录。
// request 全文超出 MySQL 唯一索引长度限制，唯一索引建在全文的 SHA-256
// 摘要列上，两条仅在长前缀之后才不同的请求也能各占一行。
type Message struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUser    string    `gorm:"type:varchar(64);not null;uniqueIndex:udx_from_user_request" json:"fromUser"`
	Request     string    `gorm:"type:varchar(2048);not null" json:"request"`
	RequestHash string    `gorm:"type:char(64);not null;uniqueIndex:udx_from_user_request" json:"-"`
	Response    string    `gorm:"type:varchar(2048);not null;default:''" json:"response"`
	Status      string    `gorm:"type:varchar(16);not null;default:'THINKING'" json:"status"`
	AIType      string    `gorm:"column:ai_type;type:varchar(16)" json:"aiType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.RequestHash == "" {
		m.RequestHash = HashRequest(m.Request)
	}
	return
}

// HashRequest 请求全文的 SHA-256 十六进制摘要，即唯一索引列的取值
func HashRequest(request string) string {
	sum := sha256.Sum256([]byte(request))
	return hex.EncodeToString(sum[:])
}
