package service

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"wechat_ai_relay/internal/config"
	"wechat_ai_relay/internal/util"
	"wechat_ai_relay/pkg/logger"
	"wechat_ai_relay/pkg/monitoring"
)

// 外部调用失败时的兜底文案，作为正常回答落库
const (
	AITextFallback  = "AI 挂了"
	AIImageFallback = "AI 作画挂了"
)

// AIService 包一层 OpenAI 客户端：文本补全与图片生成。
// 调用失败不向上抛错，统一兜底为固定文案，由调用方当作普通回答处理。
type AIService struct {
	client *openai.Client
	cfg    config.OpenAIConfig
}

func NewAIService(cfg config.OpenAIConfig) *AIService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &AIService{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (s *AIService) TextCompletion(ctx context.Context, prompt string) string {
	monitoring.GatewayRequestCounter.WithLabelValues("text").Inc()

	resp, err := s.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       s.cfg.TextModel,
		Prompt:      prompt,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		logger.Log.Error("文本补全调用失败", zap.Error(err))
		monitoring.GatewayFailureCounter.WithLabelValues("text").Inc()
		return AITextFallback
	}
	if len(resp.Choices) == 0 {
		monitoring.GatewayFailureCounter.WithLabelValues("text").Inc()
		return AITextFallback
	}

	text := strings.TrimSpace(resp.Choices[0].Text)
	if text == "" {
		return AITextFallback
	}
	// 补全结果偶尔回显换行或 "A: " 前缀
	return util.Strip(text, []string{"\n", "A: "})
}

func (s *AIService) GenerateImage(ctx context.Context, prompt string) string {
	monitoring.GatewayRequestCounter.WithLabelValues("image").Inc()

	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt: prompt,
		N:      1,
		Size:   s.cfg.ImageSize,
	})
	if err != nil {
		logger.Log.Error("图片生成调用失败", zap.Error(err))
		monitoring.GatewayFailureCounter.WithLabelValues("image").Inc()
		return AIImageFallback
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		monitoring.GatewayFailureCounter.WithLabelValues("image").Inc()
		return AIImageFallback
	}

	return resp.Data[0].URL
}
