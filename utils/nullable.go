package utils

import "encoding/json"

// Nullable tells an absent JSON key (Set false) from an explicit null (Set
// true, Value nil). Patch payloads use it for columns that can be cleared.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Of returns a Nullable that is set to v.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// Apply writes the value into fields under column when the key was sent. A
// null becomes a NULL column.
func (n Nullable[T]) Apply(fields map[string]interface{}, column string) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		fields[column] = nil
		return
	}
	fields[column] = *n.Value
}
