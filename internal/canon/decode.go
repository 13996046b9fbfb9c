package canon

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// Decode parses JSON into a Value.
// Numbers without a fraction or exponent become Int; all others become Float.
// Objects tagged {"_type":"ndarray"} are restored as NDArray.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode: trailing data after JSON value")
	}
	return FromGo(raw)
}

// FromGo converts a plain Go value to a Value. It accepts the shapes produced
// by encoding/json (with or without UseNumber) and gopkg.in/yaml.v3, plus
// Values themselves.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case float32:
		return floatValue(float64(val))
	case float64:
		return floatValue(val)
	case json.Number:
		return numberValue(val)
	case []float32:
		return Float32Array(val), nil
	case []int32:
		return Int32Array(val), nil
	case []string:
		return Strings(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = e
		}
		if isNDArrayObject(obj) {
			return ndarrayFromObject(obj)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float: %v", f)
	}
	return Float(f), nil
}

func numberValue(n json.Number) (Value, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", s, err)
	}
	return floatValue(f)
}

func isNDArrayObject(obj Object) bool {
	tag, ok := obj["_type"].(String)
	return ok && tag == ndarrayTag
}

func ndarrayFromObject(obj Object) (NDArray, error) {
	dtype, ok := obj["dtype"].(String)
	if !ok {
		return NDArray{}, fmt.Errorf("ndarray: missing dtype")
	}
	shapeArr, ok := obj["shape"].(Array)
	if !ok {
		return NDArray{}, fmt.Errorf("ndarray: missing shape")
	}
	shape := make([]int, len(shapeArr))
	for i, d := range shapeArr {
		n, ok := d.(Int)
		if !ok {
			return NDArray{}, fmt.Errorf("ndarray: shape[%d] is not an integer", i)
		}
		shape[i] = int(n)
	}
	b64, ok := obj["data_b64"].(String)
	if !ok {
		return NDArray{}, fmt.Errorf("ndarray: missing data_b64")
	}
	data, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return NDArray{}, fmt.Errorf("ndarray: %w", err)
	}
	a := NDArray{Dtype: Dtype(dtype), Shape: shape, Data: data}
	if err := a.Validate(); err != nil {
		return NDArray{}, err
	}
	return a, nil
}
