package main

import (
	"log"

	"wechat_ai_relay/internal/app"
	"wechat_ai_relay/internal/config"
	"wechat_ai_relay/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
