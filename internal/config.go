package internal

import (
	"fmt"
	"time"
)

// Config is the broker's environment-driven configuration.
type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=8080"`

	LogLevel        string `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath  string `env:"BADGER_FILEPATH,required=true"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=5s"`
	LockTimeout          time.Duration `env:"LOCK_TIMEOUT,default=30s"`
	TypingTTL            time.Duration `env:"TYPING_TTL,default=1s"`
	SweepInterval        time.Duration `env:"SWEEP_INTERVAL,default=250ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	MaxContentLength int `env:"MAX_CONTENT_LENGTH,default=1000"`
	RoomMessageCap   int `env:"ROOM_MESSAGE_CAP,default=50"`
	MaxActiveRooms   int `env:"MAX_ACTIVE_ROOMS,default=50"`
	ListLimit        int `env:"LIST_LIMIT,default=50"`
}

// CharacterRune enforces that the censor replacement is a single character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
