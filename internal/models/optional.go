package models

import "encoding/json"

// Optional distingue entre un campo ausente, un campo en null y un campo con valor
// dentro de un payload JSON de actualización parcial.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON marca el campo como presente, incluso cuando llega como null
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON serializa el valor o null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// IsNull indica que el campo llegó explícitamente como null
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}

// Some construye un Optional presente con valor
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null construye un Optional presente en null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
