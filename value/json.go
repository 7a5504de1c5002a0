package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/wippyai/wave/errors"
)

// MaxJSONDepth bounds nesting when decoding JSON documents.
const MaxJSONDepth = 128

// DecodeJSON decodes a JSON document into a value tree, keeping object keys
// in document order. A repeated key keeps its first position and its last
// value.
func DecodeJSON(data []byte) (Value, error) {
	raw, dataType, end, err := jsonparser.Get(data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "decode JSON")
	}
	if rest := bytes.TrimSpace(data[end:]); len(rest) > 0 {
		return nil, errors.InvalidData(errors.PhaseLoad, nil, "unexpected data after JSON value at offset "+strconv.Itoa(end))
	}
	return decodeJSON(raw, dataType, nil, 0)
}

func decodeJSON(raw []byte, dataType jsonparser.ValueType, path []string, depth int) (Value, error) {
	if depth > MaxJSONDepth {
		return nil, errors.TooDeep(errors.PhaseLoad, path, MaxJSONDepth)
	}

	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, jsonError(path, err)
		}
		return String(s), nil

	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return nil, jsonError(path, err)
		}
		return Number(f), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, jsonError(path, err)
		}
		return Bool(b), nil

	case jsonparser.Null:
		return Null{}, nil

	case jsonparser.Array:
		list := List{}
		var elemErr error
		_, err := jsonparser.ArrayEach(raw, func(elem []byte, elemType jsonparser.ValueType, _ int, err error) {
			if elemErr != nil {
				return
			}
			if err != nil {
				elemErr = jsonError(path, err)
				return
			}
			v, err := decodeJSON(elem, elemType, appendPath(path, strconv.Itoa(len(list))), depth+1)
			if err != nil {
				elemErr = err
				return
			}
			list = append(list, v)
		})
		if elemErr != nil {
			return nil, elemErr
		}
		if err != nil {
			return nil, jsonError(path, err)
		}
		return list, nil

	case jsonparser.Object:
		m := Map{}
		err := jsonparser.ObjectEach(raw, func(key, elem []byte, elemType jsonparser.ValueType, _ int) error {
			k := string(key)
			v, err := decodeJSON(elem, elemType, appendPath(path, k), depth+1)
			if err != nil {
				return err
			}
			m = m.Set(k, v)
			return nil
		})
		if err != nil {
			if _, ok := err.(*errors.Error); ok {
				return nil, err
			}
			return nil, jsonError(path, err)
		}
		return m, nil
	}

	return nil, errors.InvalidData(errors.PhaseLoad, path, "unrecognized JSON value")
}

func jsonError(path []string, err error) *errors.Error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidData).
		Path(path...).
		Cause(err).
		Detail("malformed JSON").
		Build()
}

// EncodeJSON renders v as compact JSON with map entries in order. JSON has
// no inf or nan, so non-finite numbers are written as the strings "inf",
// "-inf" and "nan".
func EncodeJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		return writeJSONString(buf, string(x))
	case Number:
		f := float64(x)
		switch {
		case math.IsNaN(f):
			buf.WriteString(`"nan"`)
		case math.IsInf(f, 1):
			buf.WriteString(`"inf"`)
		case math.IsInf(f, -1):
			buf.WriteString(`"-inf"`)
		default:
			b, err := json.Marshal(f)
			if err != nil {
				return err
			}
			buf.Write(b)
		}
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(x)))
	case List:
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Map:
		buf.WriteByte('{')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case Result:
		buf.WriteString(`{"` + x.Tag() + `":`)
		if err := writeJSON(buf, x.Payload); err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func (v String) MarshalJSON() ([]byte, error) { return EncodeJSON(v) }
func (v Number) MarshalJSON() ([]byte, error) { return EncodeJSON(v) }
func (v Bool) MarshalJSON() ([]byte, error)   { return EncodeJSON(v) }
func (v Null) MarshalJSON() ([]byte, error)   { return EncodeJSON(v) }
func (v List) MarshalJSON() ([]byte, error)   { return EncodeJSON(v) }
func (v Map) MarshalJSON() ([]byte, error)    { return EncodeJSON(v) }
func (v Result) MarshalJSON() ([]byte, error) { return EncodeJSON(v) }
