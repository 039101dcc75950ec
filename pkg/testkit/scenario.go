// Package testkit drives HTTP API tests from JSON scenario files.
//
// A scenario file holds an array of steps run in order against one handler,
// so later steps observe what earlier ones wrote:
//
//	testdata/
//	  orders.json            ← steps
//	  orders_list_res.json   ← expected response body (optional)
//
// Example _test.go:
//
//	func TestOrders(t *testing.T) {
//	    handler := kernel.NewHTTPKernel(deps).Handler()
//	    testkit.RunFile(t, handler, "testdata/orders.json", testkit.Bearer("tok:"))
//	}
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes a single request and what the handler must answer.
type Scenario struct {
	Name string `json:"name"`

	Method  string            `json:"method"`
	URL     string            `json:"url"`
	As      string            `json:"as"`      // identity handed to the Credential func, "" for none
	Body    json.RawMessage   `json:"body"`    // inline request body
	Headers map[string]string `json:"headers"` // extra request headers

	ExpectedCode     int             `json:"expectedCode"`
	Response         json.RawMessage `json:"response"`         // inline expected JSON body
	ResponseFileName string          `json:"responseFileName"` // expected body file, relative to the scenario file
	ResponseText     *string         `json:"responseText"`     // expected plain-text body

	dir string
}

// Credential turns a scenario's As field into request headers.
type Credential func(r *http.Request, as string)

// Bearer sends "Authorization: Bearer <prefix><as>".
func Bearer(prefix string) Credential {
	return func(r *http.Request, as string) {
		r.Header.Set("Authorization", "Bearer "+prefix+as)
	}
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.URL == "" {
		return errors.New("url is required")
	}
	if s.ExpectedCode == 0 {
		return errors.New("expectedCode is required")
	}
	if s.Method == "" {
		s.Method = http.MethodGet
	}
	s.Method = strings.ToUpper(s.Method)
	return nil
}

// ResponseBodyPath returns the absolute path of the expected response file,
// or "" when none is set.
func (s *Scenario) ResponseBodyPath() string {
	if s.ResponseFileName == "" {
		return ""
	}
	if filepath.IsAbs(s.ResponseFileName) {
		return s.ResponseFileName
	}
	return filepath.Join(s.dir, s.ResponseFileName)
}

// LoadFile reads and validates the array of scenarios stored at path.
func LoadFile(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("testkit: %q holds no scenarios", abs)
	}

	dir := filepath.Dir(abs)
	for i, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %q step %d: %w", abs, i, err)
		}
		s.dir = dir
	}
	return scenarios, nil
}
