package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RunFile loads the scenario array at path and runs each step as a subtest,
// in file order, against handler. cred may be nil when no step sets As.
func RunFile(t *testing.T, handler http.Handler, path string, cred Credential) {
	t.Helper()

	scenarios, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			Do(t, handler, s, cred)
		})
	}
}

// RunDir runs every *.json file in dir through RunFile. Each file gets its
// own handler from newHandler so files never share state.
func RunDir(t *testing.T, dir string, newHandler func(t *testing.T) http.Handler, cred Credential) {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range files {
		name := filepath.Base(path)
		if isResponseFile(name) {
			continue
		}
		t.Run(name, func(t *testing.T) {
			RunFile(t, newHandler(t), path, cred)
		})
	}
}

// Do fires one scenario and asserts on the recorded response.
func Do(t *testing.T, handler http.Handler, s *Scenario, cred Credential) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader = http.NoBody
	if len(s.Body) > 0 {
		body = bytes.NewReader(s.Body)
	}

	req := httptest.NewRequest(s.Method, s.URL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.As != "" && cred != nil {
		cred(req, s.As)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)

	switch {
	case len(s.Response) > 0:
		AssertJSONBody(t, s, s.Response, rec.Body.Bytes())
	case s.ResponseBodyPath() != "":
		expected, err := os.ReadFile(s.ResponseBodyPath())
		if err != nil {
			t.Errorf("[%s] read response file: %v", s.Name, err)
			break
		}
		AssertJSONBody(t, s, expected, rec.Body.Bytes())
	case s.ResponseText != nil:
		AssertTextBody(t, s, *s.ResponseText, rec.Body.String())
	}
	return rec
}

func isResponseFile(name string) bool {
	return strings.HasSuffix(name, "_res.json")
}
