package contract

import (
	"encoding/json"
	"fmt"
	"time"
)

// ValidationError reports why a payload was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks raw JSON against the current wire contract. Rules run in
// order and the first failure wins:
//
//  1. kind must equal the discriminator literal; legacy un-wrapped payloads
//     (missing kind or version) fail here too.
//  2. version must equal CurrentVersion; future versions are never accepted.
//  3. generatedAt must parse as ISO-8601.
//  4. payload.results must be an array whose elements carry id, source, title.
//  5. payload.errors, when present, must be an array of {source, error} pairs.
func Validate(raw []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid("payload is not a JSON object: %v", err)
	}

	var kind string
	if rawKind, ok := doc["kind"]; !ok || json.Unmarshal(rawKind, &kind) != nil || kind != Kind {
		return invalid("missing or unknown discriminator %q (want kind=%q)", kind, Kind)
	}

	var version int
	rawVersion, ok := doc["version"]
	if !ok || json.Unmarshal(rawVersion, &version) != nil {
		return invalid("missing version alongside discriminator %q", Kind)
	}
	if version != CurrentVersion {
		return invalid("Unsupported version %d (supported: %d)", version, CurrentVersion)
	}

	var generatedAt string
	if rawGen, ok := doc["generatedAt"]; !ok || json.Unmarshal(rawGen, &generatedAt) != nil {
		return invalid("generatedAt missing or not a string")
	}
	if _, err := parseISO8601(generatedAt); err != nil {
		return invalid("generatedAt %q is not a valid ISO-8601 timestamp", generatedAt)
	}

	var payload map[string]json.RawMessage
	rawPayload, ok := doc["payload"]
	if !ok || json.Unmarshal(rawPayload, &payload) != nil {
		return invalid("payload missing or not an object")
	}

	var results []map[string]json.RawMessage
	rawResults, ok := payload["results"]
	if !ok || json.Unmarshal(rawResults, &results) != nil {
		return invalid("payload.results missing or not an array")
	}
	for i, r := range results {
		for _, field := range []string{"id", "source", "title"} {
			var v string
			if rawField, ok := r[field]; !ok || json.Unmarshal(rawField, &v) != nil || v == "" {
				return invalid("payload.results[%d] missing required field %q", i, field)
			}
		}
	}

	if rawErrors, ok := payload["errors"]; ok {
		var errs []map[string]json.RawMessage
		if json.Unmarshal(rawErrors, &errs) != nil {
			return invalid("payload.errors is not an array")
		}
		for i, e := range errs {
			for _, field := range []string{"source", "error"} {
				var v string
				if rawField, ok := e[field]; !ok || json.Unmarshal(rawField, &v) != nil {
					return invalid("payload.errors[%d] missing field %q", i, field)
				}
			}
		}
	}

	return nil
}

// ValidateEnvelope serialises and validates an in-memory envelope.
func ValidateEnvelope(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return Validate(data)
}

var iso8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseISO8601(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range iso8601Layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
