// Package config holds the client settings. Defaults are overridden by
// AURORACHAT_* environment variables and then by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/omochice/aurorachat/internal/chatlog"
	"github.com/omochice/aurorachat/internal/input"
	"github.com/omochice/aurorachat/internal/transport/tcp"
	"github.com/omochice/aurorachat/pkg/protocol"
)

// DefaultServer is the chat server address baked in at build time with
// -ldflags "-X github.com/omochice/aurorachat/internal/config.DefaultServer=host:port".
var DefaultServer = "127.0.0.1:8961"

// UI names.
const (
	UIConsole = "console"
	UIGamepad = "gamepad"
)

const envPrefix = "AURORACHAT_"

// Config is the full client configuration.
type Config struct {
	Server               string
	UI                   string
	FrameInterval        time.Duration
	DialTimeout          time.Duration
	PollWindow           time.Duration
	WriteTimeout         time.Duration
	RecvBufferSize       int
	LogCapacity          int
	LineLimit            int
	InputCapacity        int
	ResendAfterReconnect bool
	HistoryPath          string
	NoHistory            bool
	Debug                bool
	LogDir               string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:               DefaultServer,
		UI:                   UIConsole,
		FrameInterval:        150 * time.Millisecond,
		DialTimeout:          5 * time.Second,
		PollWindow:           tcp.DefaultPollWindow,
		WriteTimeout:         5 * time.Second,
		RecvBufferSize:       protocol.RecvBufferSize,
		LogCapacity:          chatlog.DefaultCapacity,
		LineLimit:            chatlog.DefaultLineLimit,
		InputCapacity:        input.DefaultCapacity,
		ResendAfterReconnect: true,
		LogDir:               "logs",
	}
}

// RegisterFlags binds c's fields to fs, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Server, "server", c.Server, "Chat server address (host:port, or ws://host:port/path)")
	fs.StringVar(&c.UI, "ui", c.UI, "User interface: console or gamepad")
	fs.DurationVar(&c.FrameInterval, "frame", c.FrameInterval, "Delay between loop iterations")
	fs.DurationVar(&c.DialTimeout, "dial-timeout", c.DialTimeout, "Timeout for connecting to the server")
	fs.DurationVar(&c.PollWindow, "poll-window", c.PollWindow, "How long a receive poll may wait for data")
	fs.DurationVar(&c.WriteTimeout, "write-timeout", c.WriteTimeout, "Timeout for sending one line")
	fs.IntVar(&c.RecvBufferSize, "recv-buffer", c.RecvBufferSize, "Maximum bytes read per poll")
	fs.IntVar(&c.LogCapacity, "log-lines", c.LogCapacity, "Number of chat lines kept on screen")
	fs.IntVar(&c.LineLimit, "line-limit", c.LineLimit, "Maximum bytes per chat line")
	fs.IntVar(&c.InputCapacity, "input-capacity", c.InputCapacity, "Maximum bytes in the input buffer")
	fs.BoolVar(&c.ResendAfterReconnect, "resend", c.ResendAfterReconnect, "Resend a line after a successful reconnect")
	fs.StringVar(&c.HistoryPath, "history", c.HistoryPath, "Chat history file (default under the user config directory)")
	fs.BoolVar(&c.NoHistory, "no-history", c.NoHistory, "Do not load or save chat history")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Write a debug log")
	fs.StringVar(&c.LogDir, "log-dir", c.LogDir, "Directory for debug logs")
}

// ApplyEnv overrides fields from AURORACHAT_* variables read via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v := getenv(envPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	num := func(name string, dst *int) {
		if v := getenv(envPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if v := getenv(envPrefix + name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("SERVER", &c.Server)
	str("UI", &c.UI)
	dur("FRAME", &c.FrameInterval)
	dur("DIAL_TIMEOUT", &c.DialTimeout)
	dur("POLL_WINDOW", &c.PollWindow)
	dur("WRITE_TIMEOUT", &c.WriteTimeout)
	num("RECV_BUFFER", &c.RecvBufferSize)
	num("LOG_LINES", &c.LogCapacity)
	num("LINE_LIMIT", &c.LineLimit)
	num("INPUT_CAPACITY", &c.InputCapacity)
	boolean("RESEND", &c.ResendAfterReconnect)
	str("HISTORY", &c.HistoryPath)
	boolean("NO_HISTORY", &c.NoHistory)
	boolean("DEBUG", &c.Debug)
	str("LOG_DIR", &c.LogDir)

	return errors.Join(errs...)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Server == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.UI != UIConsole && c.UI != UIGamepad {
		errs = append(errs, fmt.Errorf("unknown ui %q (want %s or %s)", c.UI, UIConsole, UIGamepad))
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, errors.New("frame interval must be positive"))
	}
	if c.DialTimeout <= 0 {
		errs = append(errs, errors.New("dial timeout must be positive"))
	}
	if c.PollWindow <= 0 {
		errs = append(errs, errors.New("poll window must be positive"))
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, errors.New("write timeout must not be negative"))
	}
	if c.RecvBufferSize <= 0 {
		errs = append(errs, errors.New("receive buffer must be positive"))
	}
	if c.LogCapacity <= 0 {
		errs = append(errs, errors.New("log lines must be positive"))
	}
	if c.LineLimit <= 0 {
		errs = append(errs, errors.New("line limit must be positive"))
	}
	if c.InputCapacity <= 0 || c.InputCapacity >= protocol.MaxLineSize {
		errs = append(errs, fmt.Errorf("input capacity must be between 1 and %d", protocol.MaxLineSize-1))
	}
	return errors.Join(errs...)
}
