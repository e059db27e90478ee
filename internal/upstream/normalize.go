// Package upstream talks to the HTTP collaborators (identity store, poster
// history, payment, generation) and turns their loosely shaped replies into
// a canonical value.
//
// Collaborators sit behind an API gateway that is not consistent about
// encoding: a reply may be a plain JSON object, an envelope whose "body" is
// a JSON string, a list of JSON strings, or carry over-escaped URLs.
// Normalize resolves all of that and never fails on shape problems; the
// only hard failure is a non-2xx HTTP status, reported by Client.
package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Shape is the payload shape the caller expects.
type Shape int

const (
	// ShapeObject expects a single JSON object.
	ShapeObject Shape = iota

	// ShapeList expects a JSON array of objects.
	ShapeList
)

// Status tags which branch of Result is populated.
type Status int

const (
	// StatusOK means the payload matched the expected shape cleanly.
	StatusOK Status = iota

	// StatusPartial means the payload was usable only in part. Object or
	// List holds the best-effort value and Warnings says what was lost.
	StatusPartial

	// StatusError means the collaborator answered with an explicit error
	// payload. Message holds its text.
	StatusError
)

// String returns a log-friendly name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// maxEnvelopeDepth bounds how many nested "body" strings are unwrapped.
const maxEnvelopeDepth = 4

// posterURLKey is the field repaired by rule 4.
const posterURLKey = "poster_url"

// Result is the outcome of normalizing one collaborator reply.
type Result struct {
	Status Status

	// Object is set for ShapeObject payloads (nil when nothing usable).
	Object map[string]any

	// List is set for ShapeList payloads (empty, never nil, when nothing usable).
	List []map[string]any

	// Message is the collaborator's error text when Status is StatusError.
	Message string

	// Warnings describes every anomaly that was degraded instead of raised.
	Warnings []string
}

// IsError reports whether the collaborator answered with an error payload.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	if r.Status == StatusOK {
		r.Status = StatusPartial
	}
}

// Normalize decodes raw into the expected shape. Rules, in order:
//
//  1. An object with a "body" string is replaced by the parsed string
//     (recursively). If the inner parse fails the outer object is kept.
//  2. An object with "errorMessage" or "error" is an upstream error.
//  3. For ShapeList, list elements that are JSON strings are parsed one by
//     one; elements that do not parse are dropped.
//  4. Every object's non-empty "poster_url" is stripped of surrounding
//     backslashes and double quotes.
func Normalize(raw []byte, shape Shape) Result {
	res := Result{Status: StatusOK}
	if shape == ShapeList {
		res.List = []map[string]any{}
	}

	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		res.warn("payload is not JSON: %v", err)
		return res
	}

	payload := unwrapEnvelope(top, 0, &res)

	// Rule 2: an explicit error wins over any success-path shaping.
	if obj, ok := payload.(map[string]any); ok {
		if msg, isErr := errorMessage(obj); isErr {
			return Result{
				Status:   StatusError,
				Message:  msg,
				Warnings: res.Warnings,
			}
		}
	}

	switch shape {
	case ShapeObject:
		obj, ok := payload.(map[string]any)
		if !ok {
			res.warn("expected an object, got %s", describe(payload))
			return res
		}
		cleanPosterURL(obj)
		res.Object = obj

	case ShapeList:
		items, ok := payload.([]any)
		if !ok {
			res.warn("expected a list, got %s", describe(payload))
			return res
		}
		res.List = decodeList(items, &res)
	}

	return res
}

// unwrapEnvelope applies rule 1. A "body" holding an object or list
// directly (no string encoding) is unwrapped as well.
func unwrapEnvelope(v any, depth int, res *Result) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	body, ok := obj["body"]
	if !ok {
		return v
	}
	if depth >= maxEnvelopeDepth {
		res.warn("envelope nested deeper than %d levels", maxEnvelopeDepth)
		return v
	}

	switch b := body.(type) {
	case string:
		var inner any
		if err := json.Unmarshal([]byte(b), &inner); err != nil {
			res.warn("envelope body is not JSON: %v", err)
			return v
		}
		return unwrapEnvelope(inner, depth+1, res)
	case map[string]any, []any:
		return unwrapEnvelope(b, depth+1, res)
	default:
		return v
	}
}

// errorMessage reports whether obj is an error payload and extracts its
// text, preferring "errorMessage" over "error".
func errorMessage(obj map[string]any) (string, bool) {
	em, hasEM := obj["errorMessage"]
	e, hasE := obj["error"]
	if !hasEM && !hasE {
		return "", false
	}
	if s := stringify(em); s != "" {
		return s, true
	}
	if s := stringify(e); s != "" {
		return s, true
	}
	return "unknown upstream error", true
}

// decodeList applies rules 3 and 4 to every list element.
func decodeList(items []any, res *Result) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		if s, ok := item.(string); ok {
			var parsed any
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				res.warn("dropped list element %d: not JSON", i)
				continue
			}
			item = parsed
		}

		obj, ok := item.(map[string]any)
		if !ok {
			res.warn("dropped list element %d: %s is not an object", i, describe(item))
			continue
		}
		cleanPosterURL(obj)
		out = append(out, obj)
	}
	return out
}

// cleanPosterURL applies rule 4 in place.
func cleanPosterURL(obj map[string]any) {
	s, ok := obj[posterURLKey].(string)
	if !ok || s == "" {
		return
	}
	obj[posterURLKey] = CleanURL(s)
}

// CleanURL strips surrounding backslashes, then surrounding double quotes,
// repeating both passes until the value stops changing. A value escaped as
// \"https://x/y.png\" comes back as https://x/y.png. Unlike a single pass,
// a quote that hides a backslash is peeled too: "\abc becomes abc, not \abc.
func CleanURL(s string) string {
	for {
		next := strings.Trim(strings.Trim(s, `\`), `"`)
		if next == s {
			return s
		}
		s = next
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
