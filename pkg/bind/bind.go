// Package bind decodes an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/cubeshop/config"
)

// ErrMalformed wraps every decode failure so callers can answer 400.
var ErrMalformed = errors.New("malformed request body")

// FieldError is a decode error that blames a single input field, such as a
// wrongly typed value rejected by a custom UnmarshalJSON.
type FieldError interface {
	error
	Field() string
}

// JSON decodes r.Body as JSON into dest. The body is capped at
// MAX_BODY_BYTES.
// Returns (errs, nil) when a field has the wrong type, reported either by a
// FieldError or by encoding/json itself.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: body too large (max %d bytes)", ErrMalformed, maxErr.Limit)
		}
		var fe FieldError
		if errors.As(err, &fe) {
			return map[string]string{fe.Field(): fe.Error()}, nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return map[string]string{
				typeErr.Field: fmt.Sprintf("The %s field must be a %s.", typeErr.Field, typeErr.Type),
			}, nil
		}
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformed, err)
	}
	return nil, nil
}
