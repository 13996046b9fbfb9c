package canon

import (
	"bytes"
	"math"

	"golang.org/x/text/unicode/norm"
)

// Equal reports whether a and b are the same value, that is whether they
// have the same canonical form. Strings and object keys compare after NFC
// normalization. Numbers compare by value, so Int(2) equals Float(2); JSON
// has a single number type and the canonical form of both is "2". Two Ints
// compare exactly.
func Equal(a, b Value) bool {
	if eq, ok := numbersEqual(a, b); ok {
		return eq
	}

	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && norm.NFC.String(string(av)) == norm.NFC.String(string(bv))
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok {
			return false
		}
		an, bn := nfcKeys(av), nfcKeys(bv)
		if len(an) != len(av) || len(bn) != len(bv) || len(an) != len(bn) {
			return false
		}
		for k, ae := range an {
			be, ok := bn[k]
			if !ok || !Equal(ae, be) {
				return false
			}
		}
		return true
	case NDArray:
		bv, ok := b.(NDArray)
		if !ok || av.Dtype != bv.Dtype || len(av.Shape) != len(bv.Shape) {
			return false
		}
		for i := range av.Shape {
			if av.Shape[i] != bv.Shape[i] {
				return false
			}
		}
		return bytes.Equal(av.Data, bv.Data)
	}
	return false
}

// numbersEqual compares a and b when a is a number. ok is false when a is
// not a number.
func numbersEqual(a, b Value) (eq, ok bool) {
	switch av := a.(type) {
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv, true
		case Float:
			return intEqualsFloat(int64(av), float64(bv)), true
		}
		return false, true
	case Float:
		switch bv := b.(type) {
		case Int:
			return intEqualsFloat(int64(bv), float64(av)), true
		case Float:
			return av == bv, true
		}
		return false, true
	}
	return false, false
}

func intEqualsFloat(i int64, f float64) bool {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return false
	}
	return int64(f) == i
}

// nfcKeys returns obj keyed by normalized keys. Colliding keys shrink the
// result, which Equal treats as unequal.
func nfcKeys(obj Object) map[string]Value {
	out := make(map[string]Value, len(obj))
	for k, v := range obj {
		out[norm.NFC.String(k)] = v
	}
	return out
}
