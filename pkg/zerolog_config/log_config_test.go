package zerolog_config

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLevel(tt.in), tt.in)
	}
}

func TestStartupRequiresIndex(t *testing.T) {
	assert.Error(t, StartupWithEnv("", "", "info"))
}

func TestConsoleOnlyLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "", "logs")
	logger.Info().Str("patient_ref", "abc").Msg("Vital recorded")

	assert.Contains(t, buf.String(), "Vital recorded")
	assert.Contains(t, buf.String(), "patient_ref=abc")
}

func TestElasticsearchWriter(t *testing.T) {
	var got []byte
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	w := ElasticsearchWriter{URL: srv.URL + "/logs"}
	n, err := w.Write([]byte(`{"message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, "/logs/_doc", path)
	assert.JSONEq(t, `{"message":"hi"}`, string(got))
}

func TestElasticsearchWriterRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := ElasticsearchWriter{URL: srv.URL}.Write([]byte(`{}`))
	assert.Error(t, err)
}
