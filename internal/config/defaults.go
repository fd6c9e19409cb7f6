package config

import "github.com/spf13/viper"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "storage.db"

	// Ollama defaults. The preset values bound latency and reply length and
	// come from informal tuning; every knob can be overridden per call.
	DefaultOllamaBaseURL        = "http://localhost:11434"
	DefaultOllamaTimeoutSeconds = 60
	DefaultOllamaReplyBudget    = 3800 // headroom under Telegram's 4096 ceiling
	DefaultOllamaSoftCutRatio   = 0.70
	DefaultOllamaNumPredict     = 260
	DefaultOllamaNumCtx         = 2048
	DefaultOllamaTemperature    = 0.7
	DefaultOllamaTopK           = 40
	DefaultOllamaTopP           = 0.9
	DefaultOllamaRepeatPenalty  = 1.05
)

// DefaultOllamaStop holds the default stop sequences: a blank line and the
// user-turn markers in both supported locales.
var DefaultOllamaStop = []string{"\n\n", "User:", "Пользователь:"}

// DefaultMessages holds the default user-facing reply texts.
var DefaultMessages = MessagesConfig{
	Welcome:            "Hi! I'm a bot. Send /help to see the available commands.",
	Help:               "Available commands:\n/start — greeting\n/help — this message\n/activate <secret> — unlock the bot\nAny other text is answered by the model.",
	Unidentified:       "I can't identify you, so I can't help you.",
	ActivationRequired: "You need to activate me first: /activate <secret>",
	ActivateUsage:      "That's not it. Usage: /activate <secret>",
	ActivateDenied:     "Wrong secret. Usage: /activate <secret>",
	ActivateConfirm:    "You're in. Send me a message and I'll answer.",
	Thinking:           "Thinking...",
	ConfigError:        "The model is not configured. Please contact the administrator.",
	GeneralError:       "Something went wrong. Please try again later.",
	EmptyReply:         "The model returned an empty reply. Try rephrasing.",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("ollama.base_url", DefaultOllamaBaseURL)
	v.SetDefault("ollama.timeout_seconds", DefaultOllamaTimeoutSeconds)
	v.SetDefault("ollama.reply_budget", DefaultOllamaReplyBudget)
	v.SetDefault("ollama.soft_cut_ratio", DefaultOllamaSoftCutRatio)
	v.SetDefault("ollama.num_predict", DefaultOllamaNumPredict)
	v.SetDefault("ollama.num_ctx", DefaultOllamaNumCtx)
	v.SetDefault("ollama.temperature", DefaultOllamaTemperature)
	v.SetDefault("ollama.top_k", DefaultOllamaTopK)
	v.SetDefault("ollama.top_p", DefaultOllamaTopP)
	v.SetDefault("ollama.repeat_penalty", DefaultOllamaRepeatPenalty)
	v.SetDefault("ollama.stop", DefaultOllamaStop)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.unidentified", DefaultMessages.Unidentified)
	v.SetDefault("messages.activation_required", DefaultMessages.ActivationRequired)
	v.SetDefault("messages.activate_usage", DefaultMessages.ActivateUsage)
	v.SetDefault("messages.activate_denied", DefaultMessages.ActivateDenied)
	v.SetDefault("messages.activate_confirm", DefaultMessages.ActivateConfirm)
	v.SetDefault("messages.thinking", DefaultMessages.Thinking)
	v.SetDefault("messages.config_error", DefaultMessages.ConfigError)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.empty_reply", DefaultMessages.EmptyReply)

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{})
}
