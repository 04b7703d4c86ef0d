// Package codec encodes kiosk records as CBOR using Core Deterministic
// Encoding (RFC 8949 §4.2): the same logical value always produces
// identical bytes, so stored records can be compared and hashed.
package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// uuid.UUID implements TextMarshaler; encode IDs as their canonical
	// string form rather than an opaque byte array.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// TypeTag returns the fully qualified name of T, dereferencing pointer
// types, e.g. "github.com/acme/game.Sword". It identifies the asset type of
// stored items, events and transfer requests.
func TypeTag[T any]() string {
	return typeName(reflect.TypeFor[T]())
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Encode wraps v in a Record tagged with T's type name.
func Encode[T any](v T) (types.Record, error) {
	data, err := Marshal(v)
	if err != nil {
		return types.Record{}, fmt.Errorf("encode %s: %w", TypeTag[T](), err)
	}
	return types.Record{Type: TypeTag[T](), Data: data}, nil
}

// Decode unwraps a Record into a T. Returns types.ErrTypeMismatch if the
// record was written for a different type.
func Decode[T any](rec types.Record) (T, error) {
	var v T
	if rec.Type != TypeTag[T]() {
		return v, types.ErrTypeMismatch
	}
	if err := Unmarshal(rec.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", rec.Type, err)
	}
	return v, nil
}
