package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/stickerbot/internal/config"
	"github.com/dmorgan81/stickerbot/internal/handle"
	"github.com/dmorgan81/stickerbot/internal/inject"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/samber/do"
)

func main() {
	cfg, err := config.Load(os.Getenv("STICKERBOT_CONFIG"))
	if err != nil {
		log.New(os.Stderr, nil).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := log.NewContext(context.Background(), log.New(os.Stderr, log.ParseLevel(cfg.Server.LogLevel)))
	injector := inject.Setup(ctx, cfg)
	handler := do.MustInvoke[*handle.URLHandler](injector)
	lambda.StartWithOptions(handler.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
		_ = injector.Shutdown()
	}))
}
