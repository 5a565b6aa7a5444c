// Package value implements the tagged scalar universe stored at every
// path, its display form, its comparison semantics, and its binary codec.
package value

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/killiandvcz/hyperion/internal/herr"
	"github.com/killiandvcz/hyperion/internal/path"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Boolean
	Integer
	Float
	String
	Binary
	Reference
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case Binary:
		return "Binary"
	case Reference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// Value is the tagged scalar union: Null, Boolean, Integer
// (signed 64-bit), Float (IEEE-754 double), String (UTF-8), Binary
// (bytes plus optional MIME hint), Reference (a Path).
type Value struct {
	Kind Kind

	Bool    bool
	Int     int64
	Float64 float64
	Str     string
	Bin     []byte
	MIME    string
	Ref     path.Path
}

func NewNull() Value                 { return Value{Kind: Null} }
func NewBool(b bool) Value           { return Value{Kind: Boolean, Bool: b} }
func NewInt(i int64) Value           { return Value{Kind: Integer, Int: i} }
func NewFloat(f float64) Value       { return Value{Kind: Float, Float64: f} }
func NewString(s string) Value       { return Value{Kind: String, Str: s} }
func NewReference(p path.Path) Value { return Value{Kind: Reference, Ref: p} }

func NewBinary(data []byte, mime string) Value {
	return Value{Kind: Binary, Bin: append([]byte(nil), data...), MIME: mime}
}

// Display renders the value: Null -> "null"; Boolean/Integer/Float
// -> canonical decimal; String -> JSON-quoted; Binary -> "[binary data]"
// optionally with a MIME hint; Reference -> "@<path>".
func (v Value) Display() string {
	switch v.Kind {
	case Null:
		return "null"
	case Boolean:
		return strconv.FormatBool(v.Bool)
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case String:
		quoted, _ := json.Marshal(v.Str)
		return string(quoted)
	case Binary:
		if v.MIME != "" {
			return fmt.Sprintf("[binary data: %s]", v.MIME)
		}
		return "[binary data]"
	case Reference:
		return "@" + v.Ref.String()
	default:
		return "?"
	}
}

// Equal reports structural value equality, defined for every pair of
// values (Binary is excluded only from index equality keys,
// not from this general comparison).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Null:
		return true
	case Boolean:
		return v.Bool == o.Bool
	case Integer:
		return v.Int == o.Int
	case Float:
		return v.Float64 == o.Float64
	case String:
		return v.Str == o.Str
	case Binary:
		return bytes.Equal(v.Bin, o.Bin) && v.MIME == o.MIME
	case Reference:
		return v.Ref.Equal(o.Ref)
	default:
		return false
	}
}

// Compare orders two values within {Integer, Float, String}, promoting
// Integer/Float pairs to float64; any other pairing fails with
// InvalidOperation. Compare convention: negative if v < o, zero if
// equal, positive if v > o.
func (v Value) Compare(o Value) (int, error) {
	switch {
	case v.Kind == Integer && o.Kind == Integer:
		return cmpInt(v.Int, o.Int), nil
	case v.Kind == String && o.Kind == String:
		return cmpStr(v.Str, o.Str), nil
	case isNumeric(v.Kind) && isNumeric(o.Kind):
		return cmpFloat(v.numeric(), o.numeric()), nil
	default:
		return 0, herr.InvalidOperation("cannot order %s and %s", v.Kind, o.Kind)
	}
}

func isNumeric(k Kind) bool { return k == Integer || k == Float }

func (v Value) numeric() float64 {
	if v.Kind == Integer {
		return float64(v.Int)
	}
	return v.Float64
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Codec tags, used by the length-prefixed binary encoding.
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagBinary
	tagReference
)

// Encode serializes the value as a stable binary form: a one-byte
// variant tag followed by a length-prefixed payload (uint32 big-endian
// length, then the payload bytes). Fixed-width scalars still carry a
// length prefix for format uniformity.
func (v Value) Encode() ([]byte, error) {
	var payload []byte
	var tag byte

	switch v.Kind {
	case Null:
		tag = tagNull
	case Boolean:
		tag = tagBool
		if v.Bool {
			payload = []byte{1}
		} else {
			payload = []byte{0}
		}
	case Integer:
		tag = tagInt
		payload = make([]byte, 8)
		binary.BigEndian.PutUint64(payload, uint64(v.Int))
	case Float:
		tag = tagFloat
		payload = make([]byte, 8)
		binary.BigEndian.PutUint64(payload, math.Float64bits(v.Float64))
	case String:
		tag = tagString
		payload = []byte(v.Str)
	case Binary:
		tag = tagBinary
		mimeLen := len(v.MIME)
		payload = make([]byte, 2+mimeLen+len(v.Bin))
		binary.BigEndian.PutUint16(payload[0:2], uint16(mimeLen))
		copy(payload[2:2+mimeLen], v.MIME)
		copy(payload[2+mimeLen:], v.Bin)
	case Reference:
		tag = tagReference
		payload = []byte(v.Ref.String())
	default:
		return nil, herr.Serialization("unknown value kind %v", v.Kind)
	}

	out := make([]byte, 0, 5+len(payload))
	out = append(out, tag)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(payload)))
	out = append(out, lenBuf...)
	out = append(out, payload...)
	return out, nil
}

// Decode parses the binary form produced by Encode.
func Decode(data []byte) (Value, error) {
	if len(data) < 5 {
		return Value{}, herr.Deserialization("truncated value header")
	}
	tag := data[0]
	n := binary.BigEndian.Uint32(data[1:5])
	if uint32(len(data)-5) < n {
		return Value{}, herr.Deserialization("truncated value payload")
	}
	payload := data[5 : 5+n]

	switch tag {
	case tagNull:
		return NewNull(), nil
	case tagBool:
		if len(payload) != 1 {
			return Value{}, herr.Deserialization("malformed boolean payload")
		}
		return NewBool(payload[0] != 0), nil
	case tagInt:
		if len(payload) != 8 {
			return Value{}, herr.Deserialization("malformed integer payload")
		}
		return NewInt(int64(binary.BigEndian.Uint64(payload))), nil
	case tagFloat:
		if len(payload) != 8 {
			return Value{}, herr.Deserialization("malformed float payload")
		}
		return NewFloat(math.Float64frombits(binary.BigEndian.Uint64(payload))), nil
	case tagString:
		return NewString(string(payload)), nil
	case tagBinary:
		if len(payload) < 2 {
			return Value{}, herr.Deserialization("malformed binary payload")
		}
		mimeLen := int(binary.BigEndian.Uint16(payload[0:2]))
		if len(payload) < 2+mimeLen {
			return Value{}, herr.Deserialization("malformed binary mime length")
		}
		mime := string(payload[2 : 2+mimeLen])
		return NewBinary(payload[2+mimeLen:], mime), nil
	case tagReference:
		p, err := path.Parse(string(payload))
		if err != nil {
			return Value{}, herr.Deserialization("malformed reference payload: %v", err)
		}
		return NewReference(p), nil
	default:
		return Value{}, herr.Deserialization("unknown value tag %d", tag)
	}
}
