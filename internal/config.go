package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=3000"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=168h"`
	HistoryLimit      int           `env:"HISTORY_LIMIT,default=50"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	MatchCleanupDelay time.Duration `env:"MATCH_CLEANUP_DELAY,default=60s"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE,default=256"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,default=30s"`
}

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
