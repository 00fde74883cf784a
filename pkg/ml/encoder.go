package ml

import (
	"encoding/json"
	"fmt"
	"sort"
)

// LabelEncoder maps sorted distinct categories to codes 0..n-1. It is
// read-only after construction or decoding and safe for concurrent use.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// NewLabelEncoder fits an encoder on values
func NewLabelEncoder(values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}

	sort.Strings(classes)

	e := &LabelEncoder{Classes: classes}
	e.buildIndex()

	return e
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// UnmarshalJSON restores an encoder saved with the models
func (e *LabelEncoder) UnmarshalJSON(data []byte) error {
	type plain LabelEncoder

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	e.Classes = p.Classes
	e.buildIndex()

	return nil
}

// Transform returns the code of value
func (e *LabelEncoder) Transform(value string) (int, error) {
	if code, ok := e.lookup(value); ok {
		return code, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnseenCategory, value)
}

func (e *LabelEncoder) lookup(value string) (int, bool) {
	if e.index != nil {
		code, ok := e.index[value]
		return code, ok
	}

	// literal encoders without an index
	for i, c := range e.Classes {
		if c == value {
			return i, true
		}
	}

	return 0, false
}

// TransformAll encodes every value
func (e *LabelEncoder) TransformAll(values []string) ([]int, error) {
	out := make([]int, len(values))

	for i, v := range values {
		code, err := e.Transform(v)
		if err != nil {
			return nil, err
		}

		out[i] = code
	}

	return out, nil
}

// Inverse returns the category for code
func (e *LabelEncoder) Inverse(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("%w: code %d", ErrUnseenCategory, code)
	}

	return e.Classes[code], nil
}
