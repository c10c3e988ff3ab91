package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wechat_ai_relay/internal/model"
	"wechat_ai_relay/internal/service"
)

type memoryStore struct {
	mu       sync.Mutex
	messages []*model.Message
}

func (s *memoryStore) FindByUserAndRequest(fromUser, request string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.FromUser == fromUser && m.Request == request {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) CountByUserAndType(fromUser, aiType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, m := range s.messages {
		if m.FromUser == fromUser && m.AIType == aiType {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) CreateIfAbsent(message *model.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.RequestHash = model.HashRequest(message.Request)
	for _, m := range s.messages {
		if m.FromUser == message.FromUser && model.HashRequest(m.Request) == message.RequestHash {
			return false, nil
		}
	}
	s.messages = append(s.messages, message)
	return true, nil
}

func (s *memoryStore) MarkAnswered(fromUser, request, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.FromUser == fromUser && m.Request == request {
			m.Response = response
			m.Status = model.MessageStatusAnswered
		}
	}
	return nil
}

func (s *memoryStore) RecentByUserAndType(fromUser, aiType string, limit int) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*model.Message
	for _, m := range s.messages {
		if m.FromUser == fromUser && m.AIType == aiType {
			copied := *m
			result = append(result, &copied)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *memoryStore) DeleteByUserAndType(fromUser, aiType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*model.Message
	var deleted int64
	for _, m := range s.messages {
		if m.FromUser == fromUser && (m.AIType == aiType || m.AIType == "") {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	s.messages = kept
	return deleted, nil
}

type stubGateway struct{}

func (stubGateway) TextCompletion(ctx context.Context, prompt string) string {
	return "pong"
}

func (stubGateway) GenerateImage(ctx context.Context, prompt string) string {
	return "https://example.com/cat.png"
}

func newTestRouter(store *memoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewMessageService(store, stubGateway{}, time.Second)
	c := NewMessageController(svc)

	router := gin.New()
	router.POST("/message/post", c.Post)
	router.GET("/api/wx_openid", c.OpenID)
	return router
}

func postMessage(t *testing.T, router *gin.Engine, msg WechatMessage) WechatReply {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/message/post", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var reply WechatReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func TestPostWithoutUserInfo(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	reply := postMessage(t, router, WechatMessage{
		ToUserName: "gh_bot",
		Content:    "你好",
		CreateTime: 1700000000,
	})

	assert.Equal(t, "无用户信息", reply.Content)
	assert.Equal(t, "gh_bot", reply.FromUserName)
	assert.Equal(t, "text", reply.MsgType)
	assert.EqualValues(t, 1700000000, reply.CreateTime)
}

func TestPostIdentityQuery(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	reply := postMessage(t, router, WechatMessage{
		ToUserName:   "gh_bot",
		FromUserName: "user-1",
		Content:      "  获取id  ",
		CreateTime:   1700000000,
	})

	assert.Equal(t, "user-1", reply.Content)
	assert.Equal(t, "user-1", reply.ToUserName)
	assert.Equal(t, "gh_bot", reply.FromUserName)
}

func TestPostClearCommand(t *testing.T) {
	store := &memoryStore{}
	store.messages = []*model.Message{
		{FromUser: "U", Request: "q1", Status: model.MessageStatusAnswered, AIType: model.AITypeText},
		{FromUser: "U", Request: "q2", Status: model.MessageStatusAnswered, AIType: model.AITypeText},
		{FromUser: "U", Request: "作画1", Status: model.MessageStatusAnswered, AIType: model.AITypeImage},
	}
	router := newTestRouter(store)

	reply := postMessage(t, router, WechatMessage{
		ToUserName:   "gh_bot",
		FromUserName: "admin",
		Content:      "CLEAR_0U",
		CreateTime:   1700000000,
	})

	assert.Equal(t, "已重置用户共 2 条消息", reply.Content)
	// 应答发给被清空的目标用户
	assert.Equal(t, "U", reply.ToUserName)
	assert.Equal(t, "gh_bot", reply.FromUserName)
	assert.Len(t, store.messages, 1)
}

func TestPostRelaysToAI(t *testing.T) {
	router := newTestRouter(&memoryStore{})
	before := time.Now().UnixMilli()

	reply := postMessage(t, router, WechatMessage{
		ToUserName:   "gh_bot",
		FromUserName: "user-1",
		Content:      "讲个笑话",
		CreateTime:   1700000000,
	})

	assert.Equal(t, "[GPT]: pong", reply.Content)
	assert.Equal(t, "user-1", reply.ToUserName)
	assert.Equal(t, "gh_bot", reply.FromUserName)
	assert.Equal(t, "text", reply.MsgType)
	// AI 链路的应答时间是当前时间，不回显 CreateTime
	assert.GreaterOrEqual(t, reply.CreateTime, before)
}

func TestPostRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	req := httptest.NewRequest(http.MethodPost, "/message/post", bytes.NewBufferString("not-json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenIDEcho(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/wx_openid", nil)
	req.Header.Set("X-WX-SOURCE", "miniprogram")
	req.Header.Set("X-WX-OPENID", "openid-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "openid-123", rec.Body.String())
}

func TestOpenIDWithoutSourceHeader(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/wx_openid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
