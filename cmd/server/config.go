package main

import "time"

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	GCInterval           time.Duration `env:"GC_INTERVAL,default=10m"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath        string        `env:"BLUGE_FILEPATH,required=true"`
	UploadDir            string        `env:"UPLOAD_DIR,default=uploads"`
	PublicBaseURL        string        `env:"PUBLIC_BASE_URL,default=http://localhost:8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
}
