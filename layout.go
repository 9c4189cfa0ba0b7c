package deque

import (
	"fmt"
	"reflect"
)

// elementLayout returns sizeof(T) after checking that T can be stored as raw
// bytes: no pointers, no references, no zero size.
func elementLayout[T any]() (int, error) {
	typ := reflect.TypeFor[T]()
	if typ.Size() == 0 {
		return 0, ErrZeroSizedType
	}
	if err := checkPlain(typ); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrUnsupportedType, typ, err)
	}
	return int(typ.Size()), nil
}

func checkPlain(typ reflect.Type) error {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkPlain(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if err := checkPlain(f.Type); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("kind %s holds a reference", typ.Kind())
	}
}

// DefaultSchemaID derives a schema id from T's package path and name. Callers
// that rename or move T must pass an explicit id to keep existing stores
// readable.
func DefaultSchemaID[T any]() string {
	typ := reflect.TypeFor[T]()
	if typ.PkgPath() == "" {
		return typ.String()
	}
	return typ.PkgPath() + "." + typ.Name()
}
