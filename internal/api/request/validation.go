package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/starfrom/agentos-gateway/internal/model"
)

// MaxBodySize bounds JSON request bodies on REST routes.
const MaxBodySize = 1 << 20

var validate = validator.New()

func init() {
	validate.RegisterValidation("scope", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case model.ScopeRead, model.ScopeWrite:
			return true
		}
		return false
	})
}

// Decode reads a JSON body into v and validates its struct tags. An empty
// body decodes as {} so optional-only payloads may be omitted.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}
