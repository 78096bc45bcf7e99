package arena

import (
	"reflect"
	"sync"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// pointerFree caches hasPointers results per type. Shared by all arenas.
var pointerFree sync.Map // reflect.Type -> bool

// hasPointers reports whether values of t hold anything the garbage
// collector must trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Slice, reflect.Map,
		reflect.String, reflect.Interface, reflect.Chan, reflect.Func:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isPointerFree(t reflect.Type) bool {
	if v, ok := pointerFree.Load(t); ok {
		return v.(bool)
	}
	free := !hasPointers(t)
	pointerFree.Store(t, free)
	return free
}

func (a *Arena) checkType(t reflect.Type) error {
	if isPointerFree(t) {
		return nil
	}
	err := errors.Wrapf(ErrPointerType, "%s", t)
	level.Error(a.logger).Log("msg", "refusing to place pointer type in arena", "type", t.String(), "err", err)
	return err
}
