// Package config provides configuration loading and validation for the bot.
// Values come from defaults, an optional config.yaml, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components:
// logging, Telegram transport, the Ollama inference client, the database,
// and the scheduler.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the transport credential and runtime bot identity.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// SecretWord gates the /activate command. Its absence is only an error
	// when activation is attempted, so it is not validated here.
	SecretWord string `mapstructure:"secret_word"`
}

// OllamaConfig configures the inference endpoint and the reply shaping policy.
type OllamaConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"min=1,max=600"`
	ReplyBudget    int     `mapstructure:"reply_budget" validate:"min=1"`
	SoftCutRatio   float64 `mapstructure:"soft_cut_ratio" validate:"gt=0,lte=1"`

	// Fast generation preset, overridable per call.
	NumPredict    int      `mapstructure:"num_predict" validate:"min=1"`
	NumCtx        int      `mapstructure:"num_ctx" validate:"min=1"`
	Temperature   float64  `mapstructure:"temperature" validate:"min=0,max=2"`
	TopK          int      `mapstructure:"top_k" validate:"min=1"`
	TopP          float64  `mapstructure:"top_p" validate:"gt=0,lte=1"`
	RepeatPenalty float64  `mapstructure:"repeat_penalty" validate:"gt=0"`
	Stop          []string `mapstructure:"stop"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig holds the scheduled task definitions, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds every user-visible reply text.
type MessagesConfig struct {
	Welcome            string `mapstructure:"welcome" validate:"required"`
	Help               string `mapstructure:"help" validate:"required"`
	Unidentified       string `mapstructure:"unidentified" validate:"required"`
	ActivationRequired string `mapstructure:"activation_required" validate:"required"`
	ActivateUsage      string `mapstructure:"activate_usage" validate:"required"`
	ActivateDenied     string `mapstructure:"activate_denied" validate:"required"`
	ActivateConfirm    string `mapstructure:"activate_confirm" validate:"required"`
	Thinking           string `mapstructure:"thinking" validate:"required"`
	ConfigError        string `mapstructure:"config_error" validate:"required"`
	GeneralError       string `mapstructure:"general_error" validate:"required"`
	EmptyReply         string `mapstructure:"empty_reply" validate:"required"`
}

// Load reads configuration from defaults, an optional YAML file, and
// BOT_-prefixed environment variables, then validates the result. The
// operational variables TELEGRAM_BOT_TOKEN, OLLAMA_BASE_URL,
// OLLAMA_MODEL_NAME and SECRET_WORD are bound without the prefix.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed aliases matching the deployment environment.
	bindings := map[string]string{
		"telegram.token":       "TELEGRAM_BOT_TOKEN",
		"telegram.secret_word": "SECRET_WORD",
		"ollama.base_url":      "OLLAMA_BASE_URL",
		"ollama.model":         "OLLAMA_MODEL_NAME",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		// Missing config file is fine, defaults plus env cover everything.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
