package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRequestDistinguishesLongPrefixSharers(t *testing.T) {
	prefix := strings.Repeat("a", 500)

	first := HashRequest(prefix + "one")
	second := HashRequest(prefix + "two")

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
	// 同一原文摘要稳定
	assert.Equal(t, first, HashRequest(prefix+"one"))
}

func TestMessageBeforeCreateFillsRequestHash(t *testing.T) {
	m := &Message{FromUser: "user-1", Request: "你好"}
	require.NoError(t, m.BeforeCreate(nil))
	assert.Equal(t, HashRequest("你好"), m.RequestHash)

	// 已有摘要不覆盖
	m.RequestHash = "preset"
	require.NoError(t, m.BeforeCreate(nil))
	assert.Equal(t, "preset", m.RequestHash)
}
