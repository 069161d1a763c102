package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"pulse-ledger/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu     sync.RWMutex
	writer io.Writer = os.Stdout
)

// Init configures the global zerolog logger from cfg. When cfg.File is set,
// output also goes to a size-capped file that keeps one previous generation;
// the returned closer releases it.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	out := console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		fw, err := newCappedFile(cfg.File, cfg.MaxMB)
		if err != nil {
			return nil, err
		}
		out = zerolog.MultiLevelWriter(console, fw)
		closer = fw
	}

	zerolog.SetGlobalLevel(level)
	lctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		lctx = lctx.Str("service", cfg.Service)
	}
	logger := lctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	mu.Lock()
	writer = out
	mu.Unlock()
	return closer, nil
}

// Writer is the sink Init configured, for components such as the HTTP access
// log that build their own logger.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
