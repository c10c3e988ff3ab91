package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wechat_ai_relay/internal/service"
)

type memoryCounter struct {
	mu    sync.Mutex
	count int64
}

func (c *memoryCounter) Increment() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return nil
}

func (c *memoryCounter) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = 0
	return nil
}

func (c *memoryCounter) Count() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, nil
}

func newCounterRouter(store *memoryCounter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	c := NewCounterController(service.NewCounterService(store))

	router := gin.New()
	router.GET("/api/count", c.GetCount)
	router.POST("/api/count", c.UpdateCount)
	return router
}

func doCount(t *testing.T, router *gin.Engine, method, body string) counterReply {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/count", nil)
	} else {
		req = httptest.NewRequest(method, "/api/count", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var reply counterReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func TestCounterIncrementAndClear(t *testing.T) {
	router := newCounterRouter(&memoryCounter{})

	reply := doCount(t, router, http.MethodGet, "")
	assert.Equal(t, 0, reply.Code)
	assert.EqualValues(t, 0, reply.Data)

	reply = doCount(t, router, http.MethodPost, `{"action":"inc"}`)
	assert.EqualValues(t, 1, reply.Data)

	reply = doCount(t, router, http.MethodPost, `{"action":"inc"}`)
	assert.EqualValues(t, 2, reply.Data)

	reply = doCount(t, router, http.MethodGet, "")
	assert.EqualValues(t, 2, reply.Data)

	reply = doCount(t, router, http.MethodPost, `{"action":"clear"}`)
	assert.EqualValues(t, 0, reply.Data)
}

func TestCounterUnknownActionEchoesCount(t *testing.T) {
	store := &memoryCounter{count: 7}
	router := newCounterRouter(store)

	reply := doCount(t, router, http.MethodPost, `{"action":"noop"}`)
	assert.Equal(t, 0, reply.Code)
	assert.EqualValues(t, 7, reply.Data)
}
