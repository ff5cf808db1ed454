package proto

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"google.golang.org/protobuf/types/known/structpb"
)

// Message builds a Struct from already converted values.
func Message(fields map[string]*structpb.Value) *structpb.Struct {
	if fields == nil {
		fields = map[string]*structpb.Value{}
	}
	return &structpb.Struct{Fields: fields}
}

// U encodes a uint64 as a decimal string value.
func U(v uint64) *structpb.Value {
	return structpb.NewStringValue(strconv.FormatUint(v, 10))
}

// S encodes a string value.
func S(v string) *structpb.Value {
	return structpb.NewStringValue(v)
}

// B encodes a bool value.
func B(v bool) *structpb.Value {
	return structpb.NewBoolValue(v)
}

// T encodes a timestamp as RFC 3339 in UTC.
func T(v time.Time) *structpb.Value {
	return structpb.NewStringValue(v.UTC().Format(time.RFC3339Nano))
}

// Obj wraps a nested message.
func Obj(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(Message(fields))
}

// List wraps a list of values.
func List(values []*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

// Strings encodes a list of strings.
func Strings(v []string) *structpb.Value {
	values := make([]*structpb.Value, len(v))
	for i, s := range v {
		values[i] = S(s)
	}
	return List(values)
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: field %q: %s", common.ErrorInvalidInput, key, fmt.Sprintf(format, args...))
}

// Uint reads a required unsigned integer. Both decimal strings and whole
// JSON numbers up to 2^53 are accepted.
func Uint(s *structpb.Struct, key string) (uint64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, invalid(key, "missing")
	}
	return toUint(key, v)
}

// OptUint reads an optional unsigned integer.
func OptUint(s *structpb.Struct, key string, def uint64) (uint64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return def, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return def, nil
	}
	return toUint(key, v)
}

func toUint(key string, v *structpb.Value) (uint64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseUint(k.StringValue, 10, 64)
		if err != nil {
			return 0, invalid(key, "not an unsigned integer")
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f < 0 || f != math.Trunc(f) || f > 1<<53 {
			return 0, invalid(key, "not an unsigned integer")
		}
		return uint64(f), nil
	default:
		return 0, invalid(key, "not an unsigned integer")
	}
}

// Str reads an optional string; a missing field is empty.
func Str(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", invalid(key, "not a string")
	}
}

// Bool reads a required boolean.
func Bool(s *structpb.Struct, key string) (bool, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return false, invalid(key, "missing")
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, invalid(key, "not a boolean")
	}
	return b.BoolValue, nil
}

// GetUint decodes a uint64 written with U. Used on responses.
func GetUint(s *structpb.Struct, key string) uint64 {
	n, _ := OptUint(s, key, 0)
	return n
}

// GetStr decodes a string from a response.
func GetStr(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// GetBool decodes a bool from a response.
func GetBool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

// GetList returns the nested messages of a list field.
func GetList(s *structpb.Struct, key string) []*structpb.Struct {
	values := s.GetFields()[key].GetListValue().GetValues()
	out := make([]*structpb.Struct, 0, len(values))
	for _, v := range values {
		if m := v.GetStructValue(); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// GetUints decodes a list of uint64 values.
func GetUints(s *structpb.Struct, key string) []uint64 {
	values := s.GetFields()[key].GetListValue().GetValues()
	out := make([]uint64, 0, len(values))
	for i, v := range values {
		n, err := toUint(key+"["+strconv.Itoa(i)+"]", v)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

// GetObj returns a nested message field, or an empty one.
func GetObj(s *structpb.Struct, key string) *structpb.Struct {
	if m := s.GetFields()[key].GetStructValue(); m != nil {
		return m
	}
	return Message(nil)
}

// GetTime decodes a timestamp written with T.
func GetTime(s *structpb.Struct, key string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, GetStr(s, key))
	return t
}
