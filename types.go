package apillon

import (
	"encoding/json"
	"fmt"
)

// List is a page of items together with the total count reported by the API.
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// RawList is a page whose items are still undecoded; modules materialize
// each item into an entity bound to the client.
type RawList = List[json.RawMessage]

// Status is the minimal status payload some endpoints return.
type Status struct {
	Status  int  `json:"status"`
	Success bool `json:"success"`
}

// BoolResponse is returned by endpoints that only confirm an action.
type BoolResponse struct {
	Success bool `json:"success"`
}

// Truthy reports whether an endpoint's data payload confirms success.
// Accepted forms are `true`, `{"success": true}` and any non-empty object
// without a success key. `false`, `null`, zero and empty payloads are not.
func Truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if s, ok := obj["success"]; ok {
			var success bool
			return json.Unmarshal(s, &success) == nil && success
		}
		return len(obj) > 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s != ""
	}
	return false
}

// DecodeList decodes a raw list and converts every item with build.
func DecodeList[T any](raw RawList, build func(json.RawMessage) (T, error)) (*List[T], error) {
	out := &List[T]{
		Items: make([]T, 0, len(raw.Items)),
		Total: raw.Total,
	}
	for i, item := range raw.Items {
		v, err := build(item)
		if err != nil {
			return nil, fmt.Errorf("decode item %d: %w", i, err)
		}
		out.Items = append(out.Items, v)
	}
	return out, nil
}
