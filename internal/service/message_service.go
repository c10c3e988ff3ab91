package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"wechat_ai_relay/internal/model"
	"wechat_ai_relay/pkg/logger"
)

// 指令关键字与固定文案，与小程序端约定一致，不要改动
const (
	ClearKey      = "CLEAR_"
	clearKeyImage = ClearKey + "1"
	clearFlagLen  = len(ClearKey) + 1

	GetIDKey   = "获取id"
	AIImageKey = "作画"

	AIThinkingMessage  = "我已经在编了，请稍等几秒后复制原文再说一遍~"
	LimitCountResponse = "对不起，因为ChatGPT调用收费，您的免费使用额度已用完~"
	NoUserMessage      = "无用户信息"

	replyPrefix = "[GPT]: "
)

// 每个用户各类消息的免费额度
const (
	LimitAITextCount  = 10
	LimitAIImageCount = 5
)

const defaultReplyWindow = 2800 * time.Millisecond

// ConversationStore 会话存储的最小接口，由 repository.MessageRepository 实现
type ConversationStore interface {
	FindByUserAndRequest(fromUser, request string) (*model.Message, error)
	CountByUserAndType(fromUser, aiType string) (int64, error)
	CreateIfAbsent(message *model.Message) (bool, error)
	MarkAnswered(fromUser, request, response string) error
	RecentByUserAndType(fromUser, aiType string, limit int) ([]*model.Message, error)
	DeleteByUserAndType(fromUser, aiType string) (int64, error)
}

// AIGateway 外部 AI 服务，失败在网关内部兜底为固定文案，不返回 error
type AIGateway interface {
	TextCompletion(ctx context.Context, prompt string) string
	GenerateImage(ctx context.Context, prompt string) string
}

// MessageService 消息应答状态机：
// 同一 (用户, 原文) 只对应一条记录，状态 缺失 → THINKING → ANSWERED。
type MessageService struct {
	store       ConversationStore
	gateway     AIGateway
	replyWindow time.Duration
}

func NewMessageService(store ConversationStore, gateway AIGateway, replyWindow time.Duration) *MessageService {
	if replyWindow <= 0 {
		replyWindow = defaultReplyWindow
	}
	return &MessageService{
		store:       store,
		gateway:     gateway,
		replyWindow: replyWindow,
	}
}

// Reply 限时应答：解析器与定时器赛跑，先到者胜。
// 定时器赢了只是本轮不等结果，解析器继续在后台跑完并写库，
// 用户原文重发即可凭去重键取到已生成的回答。
func (s *MessageService) Reply(fromUser, content string) string {
	ch := make(chan string, 1)
	go func() {
		ch <- s.resolve(context.Background(), fromUser, content)
	}()

	select {
	case reply := <-ch:
		return reply
	case <-time.After(s.replyWindow):
		return AIThinkingMessage
	}
}

// ResetConversations 解析清空指令，删除目标用户某一类的全部会话。
// 指令格式 CLEAR_<flag><用户id>，flag 为 1 清图片，其余清文本。
func (s *MessageService) ResetConversations(content string) (string, int64, error) {
	aiType := model.AITypeText
	if strings.HasPrefix(content, clearKeyImage) {
		aiType = model.AITypeImage
	}

	var target string
	if len(content) > clearFlagLen {
		target = content[clearFlagLen:]
	}

	deleted, err := s.store.DeleteByUserAndType(target, aiType)
	return target, deleted, err
}

func (s *MessageService) resolve(ctx context.Context, fromUser, content string) string {
	existing, err := s.store.FindByUserAndRequest(fromUser, content)
	if err != nil {
		logger.Log.Error("查询会话记录失败", zap.String("fromUser", fromUser), zap.Error(err))
		return AIThinkingMessage
	}

	if existing != nil {
		if existing.Status == model.MessageStatusAnswered {
			return replyPrefix + existing.Response
		}
		// 同样的话已在回答中，不再触发第二次 AI 调用
		return AIThinkingMessage
	}

	aiType := model.AITypeText
	if strings.HasPrefix(content, AIImageKey) {
		aiType = model.AITypeImage
	}

	count, err := s.store.CountByUserAndType(fromUser, aiType)
	if err != nil {
		logger.Log.Error("统计会话条数失败", zap.String("fromUser", fromUser), zap.Error(err))
		return AIThinkingMessage
	}

	limit := int64(LimitAITextCount)
	if aiType == model.AITypeImage {
		limit = LimitAIImageCount
	}
	if count >= limit {
		return LimitCountResponse
	}

	// AI 响应慢，先占位维持状态，回答拿到后再回填。
	// 占位靠唯一索引保证原子性，没占到说明并发请求已抢先。
	created, err := s.store.CreateIfAbsent(&model.Message{
		FromUser: fromUser,
		Request:  content,
		Response: "",
		Status:   model.MessageStatusThinking,
		AIType:   aiType,
	})
	if err != nil {
		logger.Log.Error("插入会话占位失败", zap.String("fromUser", fromUser), zap.Error(err))
		return AIThinkingMessage
	}
	if !created {
		return AIThinkingMessage
	}

	var response string
	if aiType == model.AITypeImage {
		response = s.gateway.GenerateImage(ctx, strings.TrimPrefix(content, AIImageKey))
	} else {
		response = s.gateway.TextCompletion(ctx, s.buildContextPrompt(fromUser, content))
	}

	// 超出回答列上限会让回填失败，记录永远停在 THINKING
	response = truncateRunes(response, model.MaxResponseLen)

	if err := s.store.MarkAnswered(fromUser, content, response); err != nil {
		logger.Log.Error("回填会话回答失败", zap.String("fromUser", fromUser), zap.Error(err))
	}

	return replyPrefix + response
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// 拼接多轮上下文：取最近的文本会话按时间正序组成 Q/A 对。
// 刚插入的占位行也在其中，所以只有一条时直接用原文提问。
func (s *MessageService) buildContextPrompt(fromUser, content string) string {
	messages, err := s.store.RecentByUserAndType(fromUser, model.AITypeText, LimitAITextCount)
	if err != nil {
		logger.Log.Error("查询上下文失败", zap.String("fromUser", fromUser), zap.Error(err))
		return content
	}
	if len(messages) <= 1 {
		return content
	}

	pairs := make([]string, 0, len(messages))
	for _, m := range messages {
		pairs = append(pairs, fmt.Sprintf("Q: %s\n A: %s", m.Request, m.Response))
	}
	return strings.Join(pairs, "\n")
}
