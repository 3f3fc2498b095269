package zerolog_config

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
	"go.elastic.co/ecszerolog"
)

var appPrefix string
var setAppPrefixOnce *sync.Once = &sync.Once{}
var startupLoggerOnce *sync.Once = &sync.Once{}

// ElasticsearchWriter sends logs directly to Elasticsearch
type ElasticsearchWriter struct {
	URL    string
	Client *http.Client
}

func (ew ElasticsearchWriter) Write(p []byte) (n int, err error) {
	client := ew.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Post(
		ew.URL+"/_doc",
		"application/json",
		bytes.NewBuffer(p),
	)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("elasticsearch returned %d", resp.StatusCode)
	}

	return len(p), nil
}

// parseLevel falls back to info for unknown level names
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func newLogger(console io.Writer, elasticsearchURL string, index string) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}

	if elasticsearchURL == "" {
		return zerolog.New(consoleWriter).With().Str("app", appPrefix).
			Timestamp().Logger()
	}

	// Non-blocking; lines are dropped when Elasticsearch falls behind
	shipper := diode.NewWriter(&ElasticsearchWriter{
		URL:    elasticsearchURL + "/" + index,
		Client: &http.Client{Timeout: 5 * time.Second},
	}, 1000, 10*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "zerolog_config: dropped %d log lines\n", missed)
	})

	// ECS format for Elasticsearch
	ecsLogger := ecszerolog.New(shipper)

	// MultiLevelWriter: ECS to Elasticsearch + Pretty to Console
	multi := zerolog.MultiLevelWriter(
		ecsLogger,
		consoleWriter,
	)

	return zerolog.New(multi).With().Str("app", appPrefix).
		Timestamp().Logger()
}

// SetAppPrefix sets the app prefix
func SetAppPrefix(prefix string) {
	setAppPrefixOnce.Do(func() {
		appPrefix = prefix
	})
}

// StartupWithEnv sets up the global logger. With an empty elasticsearchURL
// only the console is written to. Run SetAppPrefix before StartupWithEnv.
func StartupWithEnv(elasticsearchURL string, index string, level string) error {
	if index == "" {
		return fmt.Errorf("index is required")
	}
	startupLoggerOnce.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(level))
		log.Logger = newLogger(os.Stdout, elasticsearchURL, index)
	})
	return nil
}
