package fetch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-json-relay/internal/domain"
)

// decodeJSON parses exactly one JSON document from body. Empty bodies and
// trailing data are rejected.
func decodeJSON(body []byte) (domain.Result, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode json: empty body")
		}
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: unexpected data after document")
	}
	return v, nil
}
