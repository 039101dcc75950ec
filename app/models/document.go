package models

import (
	"encoding/json"
	"fmt"
	"maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fields holds the opaque part of a document: everything a client sent that
// the storefront does not interpret.
type Fields map[string]interface{}

// ParseID turns a path identifier into a store key. 24-hex strings are
// ObjectIDs; anything else is matched as a raw string _id.
func ParseID(s string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return s
}

// NewID returns a fresh store-assigned identifier.
func NewID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// splitFields decodes a JSON object and separates the keys in known from
// the rest. The client never chooses _id.
func splitFields(data []byte, known ...string) (map[string]interface{}, Fields, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	delete(raw, "_id")

	picked := make(map[string]interface{}, len(known))
	for _, k := range known {
		if v, ok := raw[k]; ok {
			picked[k] = v
			delete(raw, k)
		}
	}

	if len(raw) == 0 {
		raw = nil
	}
	return picked, Fields(raw), nil
}

// merged copies f into a fresh map ready for the known fields to be laid
// on top.
func (f Fields) merged(id interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(f)+3)
	maps.Copy(out, f)
	if id != nil {
		out["_id"] = id
	}
	return out
}

// FieldTypeError rejects a known field whose JSON value has the wrong type.
type FieldTypeError struct {
	Name string
	Want string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("The %s field must be a %s.", e.Name, e.Want)
}

// Field names the offending input field.
func (e *FieldTypeError) Field() string { return e.Name }

// stringFields reads each key as a string. An absent key or null is "";
// any other non-string value is a FieldTypeError.
func stringFields(m map[string]interface{}, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, &FieldTypeError{Name: key, Want: "string"}
		}
		out[i] = s
	}
	return out, nil
}
