package apillon

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Entity is the identity shared by every domain object: an immutable UUID,
// the API path prefix derived from it and the client used to reach the API.
// Domain types embed it with a `json:"-"` tag so Populate leaves it alone.
type Entity struct {
	uuid   string
	prefix string
	api    *Client
}

// NewEntity binds an entity to its identifier and API prefix.
func NewEntity(api *Client, uuid, prefix string) Entity {
	return Entity{uuid: uuid, prefix: prefix, api: api}
}

// UUID returns the server-issued identifier.
func (e Entity) UUID() string { return e.uuid }

// APIPrefix returns the path of this entity relative to the API base URL.
func (e Entity) APIPrefix() string { return e.prefix }

// Client returns the client the entity was constructed with.
func (e Entity) Client() *Client { return e.api }

// Module is the collection-level counterpart of Entity: a client plus the
// prefix under which the resource family lives.
type Module struct {
	api    *Client
	prefix string
}

// NewModule creates a Module rooted at prefix.
func NewModule(api *Client, prefix string) Module {
	return Module{api: api, prefix: prefix}
}

// Client returns the module's client.
func (m Module) Client() *Client { return m.api }

// APIPrefix returns the module's path prefix.
func (m Module) APIPrefix() string { return m.prefix }

// Populate copies every exported field of patch into dst when the field in
// dst is still the zero value. Set fields are never overwritten, and fields
// tagged `json:"-"` are skipped. Non-struct values are replaced only when zero.
//
// Unset means zero, so a field deliberately set to false, 0 or "" is still
// filled from patch. Use a pointer field where a set zero must survive:
// a non-nil pointer to false is kept.
func Populate[T any](dst *T, patch T) {
	if dst == nil {
		return
	}
	dv := reflect.ValueOf(dst).Elem()
	pv := reflect.ValueOf(patch)
	if dv.Kind() != reflect.Struct {
		if dv.IsZero() {
			dv.Set(pv)
		}
		return
	}

	t := dv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}
		field := dv.Field(i)
		if !field.IsZero() {
			continue
		}
		field.Set(pv.Field(i))
	}
}

// Merge returns a copy of base with its unset fields filled from patch.
// Neither argument is modified.
func Merge[T any](base, patch T) T {
	out := base
	Populate(&out, patch)
	return out
}

// PopulateJSON decodes a partial JSON object and populates dst with it.
// Unknown keys are ignored; values of the wrong type are reported.
func PopulateJSON[T any](dst *T, raw []byte) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var patch T
	if err := json.Unmarshal(raw, &patch); err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	Populate(dst, patch)
	return nil
}

// DecodeID extracts the string field idKey from a JSON object. List
// responses name the identifier per resource (bucketUuid, websiteUuid, ...).
func DecodeID(raw []byte, idKey string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("decode %s: %w", idKey, err)
	}
	v, ok := obj[idKey]
	if !ok {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(v, &id); err != nil {
		return "", fmt.Errorf("decode %s: %w", idKey, err)
	}
	return id, nil
}

// MarshalEntity encodes v, which must marshal to a JSON object, with the
// entity identifier prepended under idKey. Entities keep their uuid outside
// the exported fields, so their MarshalJSON methods go through here with a
// method-less alias of themselves.
func MarshalEntity(idKey, uuid string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("marshal entity: %T is not an object", v)
	}
	key, _ := json.Marshal(idKey)
	id, _ := json.Marshal(uuid)

	out := make([]byte, 0, len(body)+len(key)+len(id)+2)
	out = append(out, '{')
	out = append(out, key...)
	out = append(out, ':')
	out = append(out, id...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}
