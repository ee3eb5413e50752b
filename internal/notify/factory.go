package notify

import (
	"fmt"

	"listify/internal/config"
	"listify/internal/listify"
)

// NewNotifierFromConfig creates a Notifier based on the notifier config type.
// deliver is used by the timer backend only; at jobs run the configured
// command themselves.
func NewNotifierFromConfig(cfg config.NotifierConfig, clock listify.Clock, logger listify.Logger, deliver func(Alert)) (listify.Notifier, error) {
	switch cfg.Type {
	case "timer", "":
		return NewTimerNotifier(clock, logger, deliver), nil
	case "at":
		if cfg.Command == "" {
			return nil, fmt.Errorf("at notifier requires command to be set")
		}
		return NewAtNotifier(cfg.Command, logger), nil
	case "none":
		return NewNoneNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notifier type: %s", cfg.Type)
	}
}

// InProcess reports whether cfg selects a backend whose alarms live only as
// long as the process that scheduled them.
func InProcess(cfg config.NotifierConfig) bool {
	return cfg.Type == "timer" || cfg.Type == ""
}
