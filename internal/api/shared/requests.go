package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxRequestBodySize caps request bodies at 1 MiB.
const maxRequestBodySize = 1 << 20

// DecodeJSON decodes the request body into dst, enforcing the body size
// cap and rejecting trailing garbage.
func DecodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// DecodeJSONFields decodes the request body into dst and additionally
// returns the set of top-level keys the body contained. Partial-update
// endpoints use the key set for field-level permission checks.
func DecodeJSONFields(r *http.Request, dst any) ([]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodySize)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}

	fields := make([]string, 0, len(keyed))
	for k := range keyed {
		fields = append(fields, k)
	}
	return fields, nil
}
