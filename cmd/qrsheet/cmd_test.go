package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"QRSHEET_OUTPUT_FORMAT", "QRSHEET_OUTPUT_PRETTY", "QRSHEET_OUTPUT_FILE",
		"QRSHEET_SHEETS_ENDPOINT", "VITE_SHEETS_ENDPOINT", "QRSHEET_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// run executes the CLI with args and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"normalize": false, "serve": false, "version": false}
	for _, c := range root.Commands() {
		name := strings.Fields(c.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "command %q not registered", name)
	}
}

func TestNormalizeArgs(t *testing.T) {
	isolateEnv(t)
	out, _, err := run(t, "", "normalize", "a=1&b=2")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`+"\n", out)
}

func TestNormalizeJoinsArgs(t *testing.T) {
	isolateEnv(t)
	out, _, err := run(t, "", "normalize", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, `{"value":"hello world"}`+"\n", out)
}

func TestNormalizeStdinCSV(t *testing.T) {
	isolateEnv(t)
	out, _, err := run(t, "name:Ada, lang:Go\n", "normalize", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "\"name\",\"lang\"\n\"Ada\",\"Go\"\n", out)
}

func TestNormalizePretty(t *testing.T) {
	isolateEnv(t)
	out, _, err := run(t, "", "normalize", "--pretty", `{"a":[1]}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1\n  ]\n}\n", out)
}

func TestNormalizeFormatFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("QRSHEET_OUTPUT_FORMAT", "csv")
	out, _, err := run(t, "", "normalize", "x")
	require.NoError(t, err)
	assert.Equal(t, "\"value\"\n\"x\"\n", out)
}

func TestNormalizeFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "payload.txt")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbfhttps://x.test/?id=9\n"), 0o644))

	out, _, err := run(t, "", "normalize", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"9"}`+"\n", out)

	_, _, err = run(t, "", "normalize", "--file", path, "extra")
	assert.Error(t, err)
}

func TestNormalizeOut(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "scans.jsonl")

	for _, payload := range []string{"a=1&b=2", "k:v"} {
		_, _, err := run(t, "", "normalize", "--out", path, payload)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`+"\n"+`{"k":"v"}`+"\n", string(data))
}

func TestNormalizeBadFormat(t *testing.T) {
	isolateEnv(t)
	_, _, err := run(t, "", "normalize", "--format", "xml", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestNormalizeSendWithoutEndpoint(t *testing.T) {
	isolateEnv(t)
	_, _, err := run(t, "", "normalize", "--send", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets.endpoint")
}

func TestNormalizeSend(t *testing.T) {
	isolateEnv(t)
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()
	t.Setenv("VITE_SHEETS_ENDPOINT", srv.URL)

	out, errOut, err := run(t, "", "normalize", "--send", "a=1&b=2")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`+"\n", out)
	assert.Contains(t, errOut, "✓ sent")

	var sub map[string]any
	require.NoError(t, json.Unmarshal(body, &sub))
	assert.Equal(t, "a=1&b=2", sub["raw"])
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, sub["data"])
	assert.NotEmpty(t, sub["id"])
}

func TestNormalizeSendEmptyPayload(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("endpoint should not be called for an empty payload")
	}))
	defer srv.Close()
	t.Setenv("QRSHEET_SHEETS_ENDPOINT", srv.URL)

	out, _, err := run(t, "   ", "normalize", "--send")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty payload")
	assert.Equal(t, "{}\n", out, "local output still printed")
}

func TestInvalidConfig(t *testing.T) {
	isolateEnv(t)
	_, _, err := run(t, "", "--log-level", "loud", "normalize", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestConfigFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "qrsheet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\n"), 0o644))

	out, _, err := run(t, "", "--config", path, "normalize", "k=v")
	require.NoError(t, err)
	assert.Equal(t, "\"k\"\n\"v\"\n", out)
}

func TestVersion(t *testing.T) {
	isolateEnv(t)
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "qrsheet dev\n", out)
}

func TestNewServerWiresSubmitter(t *testing.T) {
	isolateEnv(t)
	a := &app{}
	a.cfg.Server.MaxPayloadBytes = 1024
	a.cfg.Server.AsyncBuffer = 4
	srv, err := a.newServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("x")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, srv.Close())
}
