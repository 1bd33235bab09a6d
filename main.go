package main

import (
	"time"

	"viperrox/hostbot/bot"
	"viperrox/hostbot/config"
	"viperrox/hostbot/db"
	"viperrox/hostbot/health"
	"viperrox/hostbot/service"
	"viperrox/hostbot/shortener"
	"viperrox/hostbot/storage"
	"viperrox/hostbot/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	makeLogger()

	conn, err := db.New()
	if err != nil {
		panic(err)
	}

	st := store.New(conn)

	s3, err := storage.NewS3()
	if err != nil {
		panic(err)
	}

	svc := service.New(st, s3, shortener.New(viper.GetString("shortener.api_key")))

	b, err := bot.New(svc, st)
	if err != nil {
		panic(err)
	}

	go func() {
		if err := health.Run(); err != nil {
			zap.L().Fatal("Health endpoint died", zap.Error(err))
		}
	}()

	zap.L().Info("Bot starting")
	b.Start()
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
