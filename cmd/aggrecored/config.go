package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// config holds every knob aggrecored exposes, parsed the way
// cmd/deflix-stremio/config.go does: flags define defaults and
// docstrings, then an EnvPrefix-prefixed environment variable overrides
// whichever flags the caller did not explicitly set on the command line.
type config struct {
	BindAddr            string
	Port                int
	StoragePath         string
	RedisAddr           string
	LogLevel            string
	StreamingServerAddr string
	SchedulerInterval   time.Duration
	QueueCapacity       int
	EnvPrefix           string
}

func parseConfig() config {
	result := config{}

	var (
		bindAddr            = flag.String("bindAddr", "localhost", `Local interface address to bind to. "0.0.0.0" binds to all network interfaces.`)
		port                = flag.Int("port", 8484, "Port to listen on")
		storagePath         = flag.String("storagePath", "", "Path for the BadgerDB bucket store. An empty value defaults to os.UserCacheDir()+\"/aggrecored/\".")
		redisAddr           = flag.String("redisAddr", "", "Optional Redis address. When set, Redis replaces the local BadgerDB store for every bucket. Empty uses the local BadgerDB store.")
		logLevel            = flag.String("logLevel", "info", `Log level. Can be "debug", "info", "warn", "error".`)
		streamingServerAddr = flag.String("streamingServerAddr", "http://127.0.0.1:11470", "Base URL of the local streaming server")
		schedulerInterval   = flag.Duration("schedulerInterval", 15*time.Minute, "Interval between notification-pull and library-sync runs. The format must be acceptable by Go's 'time.ParseDuration()', for example \"15m\".")
		queueCapacity       = flag.Int("queueCapacity", 1000, "Capacity of the Runtime dispatch queue before messages are dropped")
		envPrefix           = flag.String("envPrefix", "", "Prefix for environment variables")
	)

	flag.Parse()

	if *envPrefix != "" && !strings.HasSuffix(*envPrefix, "_") {
		*envPrefix += "_"
	}
	result.EnvPrefix = *envPrefix

	overrideString(*envPrefix+"BIND_ADDR", "bindAddr", bindAddr)
	overrideInt(*envPrefix+"PORT", "port", port)
	overrideString(*envPrefix+"STORAGE_PATH", "storagePath", storagePath)
	overrideString(*envPrefix+"REDIS_ADDR", "redisAddr", redisAddr)
	overrideString(*envPrefix+"LOG_LEVEL", "logLevel", logLevel)
	overrideString(*envPrefix+"STREAMING_SERVER_ADDR", "streamingServerAddr", streamingServerAddr)
	overrideDuration(*envPrefix+"SCHEDULER_INTERVAL", "schedulerInterval", schedulerInterval)
	overrideInt(*envPrefix+"QUEUE_CAPACITY", "queueCapacity", queueCapacity)

	result.BindAddr = *bindAddr
	result.Port = *port
	result.StoragePath = *storagePath
	result.RedisAddr = *redisAddr
	result.LogLevel = *logLevel
	result.StreamingServerAddr = *streamingServerAddr
	result.SchedulerInterval = *schedulerInterval
	result.QueueCapacity = *queueCapacity

	if result.StoragePath == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = "."
		}
		result.StoragePath = dir + "/aggrecored"
	}

	return result
}

func overrideString(envVar, flagName string, target *string) {
	if isArgSet(flagName) {
		return
	}
	if val, ok := os.LookupEnv(envVar); ok {
		*target = val
	}
}

func overrideInt(envVar, flagName string, target *int) {
	if isArgSet(flagName) {
		return
	}
	if val, ok := os.LookupEnv(envVar); ok {
		if n, err := strconv.Atoi(val); err == nil {
			*target = n
		}
	}
}

func overrideDuration(envVar, flagName string, target *time.Duration) {
	if isArgSet(flagName) {
		return
	}
	if val, ok := os.LookupEnv(envVar); ok {
		if d, err := time.ParseDuration(val); err == nil {
			*target = d
		}
	}
}

// isArgSet reports whether flagName was actually passed on the command
// line, so an environment variable only applies as a fallback.
func isArgSet(flagName string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == flagName {
			found = true
		}
	})
	return found
}
