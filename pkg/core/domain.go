// Package core holds the unit-of-work domain: collections staging changes
// against an Adapter and a Session committing or rolling them back together.
package core

import (
	"reflect"
	"time"
)

// Data is the value stored under a key.
// A nil Data means the key holds nothing (never stored, or removed).
type Data map[string]any

// Clone returns a deep copy of d. Nested maps and slices are copied so the
// result shares no mutable state with d.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Data:
		return val.Clone()
	case map[string]any:
		return map[string]any(Data(val).Clone())
	case map[any]any:
		m := make(map[any]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	case []string:
		return append([]string(nil), val...)
	case []int:
		return append([]int(nil), val...)
	case []float64:
		return append([]float64(nil), val...)
	case []byte:
		return append([]byte(nil), val...)
	case time.Time:
		return val
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer, reflect.Struct:
			return cloneReflect(rv).Interface()
		}
		// Scalars (string, numbers, bool) are immutable.
		return val
	}
}

// cloneReflect copies any other container shape ([]Data, map[string]string,
// pointers, structs). Unexported struct fields are copied shallowly. Cyclic
// values are not supported.
func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		m := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			m.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return m
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		s := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			s.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return s
	case reflect.Array:
		a := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			a.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return a
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		p := reflect.New(v.Type().Elem())
		p.Elem().Set(cloneReflect(v.Elem()))
		return p
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflect(v.Elem()))
		return out
	case reflect.Struct:
		if v.Type() == reflect.TypeFor[time.Time]() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := range v.NumField() {
			if f := out.Field(i); f.CanSet() {
				f.Set(cloneReflect(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}

// Action is the pending change recorded for a staged key.
type Action int

const (
	// ActionNone marks a key that is cached but has nothing to persist.
	ActionNone Action = iota
	ActionAdd
	ActionUpdate
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionAdd:
		return "add"
	case ActionUpdate:
		return "update"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// stagedItem is the cached and pending state for one key.
//
// data is set for ActionAdd and ActionUpdate and nil for ActionRemove.
// original is set only while action is ActionUpdate and the key was
// previously persisted.
type stagedItem struct {
	data     Data
	original Data
	action   Action
}

// live reports whether the item currently holds data.
func (i *stagedItem) live() bool {
	return i.data != nil
}

// Pending describes a staged key awaiting flush.
type Pending struct {
	Key    string
	Action Action
}

// FlushResult is the outcome of persisting one staged key.
type FlushResult struct {
	Key    string
	Action Action
	// Value is what the adapter returned for create/update; nil for remove.
	Value Data
	Err   error
}

// CollectionResult is the outcome of flushing or clearing one collection
// during a Session commit or rollback.
type CollectionResult struct {
	Collection string
	Results    []FlushResult
	Err        error
}
