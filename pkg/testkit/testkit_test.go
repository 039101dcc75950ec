package testkit_test

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/cubeshop/pkg/testkit"
)

var testHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","uptime":3}`)) //nolint:errcheck
	case "/whoami":
		user := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer tok:")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"user": user}) //nolint:errcheck
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found\n")) //nolint:errcheck
	}
})

func TestRunFile(t *testing.T) {
	testkit.RunFile(t, testHandler, "testdata/health.json", testkit.Bearer("tok:"))
}

func TestRunDirSkipsResponseFiles(t *testing.T) {
	calls := 0
	testkit.RunDir(t, "testdata", func(t *testing.T) http.Handler {
		calls++
		return testHandler
	}, testkit.Bearer("tok:"))
	assert.Equal(t, 1, calls)
}

func TestLoadFile(t *testing.T) {
	scenarios, err := testkit.LoadFile("testdata/health.json")
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	assert.Equal(t, http.MethodGet, scenarios[0].Method, "method defaults to GET")
	assert.Equal(t, http.MethodDelete, scenarios[2].Method)

	abs, err := filepath.Abs("testdata/health_res.json")
	require.NoError(t, err)
	assert.Equal(t, abs, scenarios[0].ResponseBodyPath())
	assert.Empty(t, scenarios[1].ResponseBodyPath())
}

func TestLoadFileRejectsInvalidSteps(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"empty.json":  `[]`,
		"noname.json": `[{"url":"/","expectedCode":200}]`,
		"nourl.json":  `[{"name":"x","expectedCode":200}]`,
		"nocode.json": `[{"name":"x","url":"/"}]`,
		"broken.json": `[{`,
		"object.json": `{"name":"x","url":"/","expectedCode":200}`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		_, err := testkit.LoadFile(path)
		assert.Error(t, err, name)
	}
}

func TestDiffJSON(t *testing.T) {
	var expected, actual any
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":[1,2],"c":{"d":"x"}}`), &expected))
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":[1,2],"c":{"d":"x"},"extra":true}`), &actual))
	assert.Empty(t, testkit.DiffJSON("", expected, actual), "extra keys are ignored")

	require.NoError(t, json.Unmarshal([]byte(`{"a":2,"b":[1],"c":"x"}`), &actual))
	diffs := testkit.DiffJSON("", expected, actual)
	assert.Len(t, diffs, 3)

	assert.Empty(t, testkit.DiffJSON("", nil, nil))
	assert.NotEmpty(t, testkit.DiffJSON("", nil, map[string]any{}))
}
