// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	debugMode      = pflag.Bool("debug", false, "Forces the log level to debug")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("bot.token", "bot_token")
	v.BindEnv("bot.username", "bot_username")
	v.BindEnv("bot.admin_id", "admin_id")
	v.BindEnv("bot.contact_url", "bot_contact_url")

	v.BindEnv("health.port", "health_port")

	v.BindEnv("db.path", "db_path")

	v.BindEnv("storage.access_key_id", "storage_access_key_id")
	v.BindEnv("storage.secret_access_key", "storage_secret_access_key")
	v.BindEnv("storage.region", "storage_region")
	v.BindEnv("storage.bucket", "storage_bucket")
	v.BindEnv("storage.endpoint", "storage_endpoint")

	v.BindEnv("shortener.api_key", "tinyurl_api_key")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("quota.base_slots", "quota_base_slots")
	v.BindEnv("quota.referral_bonus", "quota_referral_bonus")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("health.port", 8080)

	v.SetDefault("db.path", "database.db")

	v.SetDefault("storage.region", "auto")

	v.SetDefault("upload.max_size", 5)

	v.SetDefault("quota.base_slots", 10)
	v.SetDefault("quota.referral_bonus", 3)

	v.SetDefault("bot.contact_url", "https://t.me/ViperROX")

	// The config file is optional, deployments usually configure the
	// bot through environment variables only
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if *debugMode {
		v.Set("app.log_level", "debug")
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetString("bot.token") == "" {
		return errors.New("bot token can't be empty")
	}

	if v.GetInt64("bot.admin_id") <= 0 {
		return errors.New("admin id must be a positive telegram user id")
	}

	if v.GetString("bot.username") == "" {
		return errors.New("bot username can't be empty, referral links need it")
	}

	if v.GetInt("health.port") <= 0 {
		return errors.New("invalid health port provided")
	}

	if v.GetString("storage.access_key_id") == "" {
		return errors.New("storage access key id can't be empty")
	}

	if v.GetString("storage.secret_access_key") == "" {
		return errors.New("storage secret access key can't be empty")
	}

	if v.GetString("storage.bucket") == "" {
		return errors.New("storage bucket can't be empty")
	}

	if v.GetString("shortener.api_key") == "" {
		zap.L().Warn("No shortener.api_key set, links will be returned unshortened")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("quota.base_slots") <= 0 {
		return errors.New("quota.base_slots must be bigger than 0")
	}

	if v.GetInt("quota.referral_bonus") < 0 {
		return errors.New("quota.referral_bonus can't be negative")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
