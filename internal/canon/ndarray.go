package canon

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Dtype names the element type of an NDArray.
type Dtype string

const (
	DtypeFloat32 Dtype = "float32"
	DtypeInt32   Dtype = "int32"
	DtypeUint8   Dtype = "uint8"
)

// ndarrayTag marks an encoded NDArray object.
const ndarrayTag = "ndarray"

// ItemSize returns the element width in bytes, or 0 for an unknown dtype.
func (d Dtype) ItemSize() int {
	switch d {
	case DtypeFloat32, DtypeInt32:
		return 4
	case DtypeUint8:
		return 1
	}
	return 0
}

// NDArray is a dense numeric array with explicit element width.
// Data holds the elements in row-major, little-endian order.
type NDArray struct {
	Dtype Dtype
	Shape []int
	Data  []byte
}

func (NDArray) canonValue() {}

// Len returns the number of elements implied by Shape.
func (a NDArray) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Validate checks that dtype, shape and data length agree.
func (a NDArray) Validate() error {
	size := a.Dtype.ItemSize()
	if size == 0 {
		return fmt.Errorf("ndarray: unknown dtype %q", a.Dtype)
	}
	for i, d := range a.Shape {
		if d < 0 {
			return fmt.Errorf("ndarray: negative dimension %d at axis %d", d, i)
		}
	}
	if want := a.Len() * size; len(a.Data) != want {
		return fmt.Errorf("ndarray: %d data bytes for shape %v %s, want %d", len(a.Data), a.Shape, a.Dtype, want)
	}
	return nil
}

// Float32Array encodes a one-dimensional float32 array.
func Float32Array(vals []float32) NDArray {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return NDArray{Dtype: DtypeFloat32, Shape: []int{len(vals)}, Data: data}
}

// Int32Array encodes a one-dimensional int32 array.
func Int32Array(vals []int32) NDArray {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(data[4*i:], uint32(v))
	}
	return NDArray{Dtype: DtypeInt32, Shape: []int{len(vals)}, Data: data}
}

// Float32Matrix encodes a two-dimensional float32 array. All rows must have
// the same length.
func Float32Matrix(rows [][]float32) (NDArray, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]byte, 0, 4*len(rows)*cols)
	var buf [4]byte
	for i, row := range rows {
		if len(row) != cols {
			return NDArray{}, fmt.Errorf("ndarray: row %d has %d columns, want %d", i, len(row), cols)
		}
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			data = append(data, buf[:]...)
		}
	}
	return NDArray{Dtype: DtypeFloat32, Shape: []int{len(rows), cols}, Data: data}, nil
}

// Float32s decodes the elements of a float32 array in row-major order.
func (a NDArray) Float32s() ([]float32, error) {
	if a.Dtype != DtypeFloat32 {
		return nil, fmt.Errorf("ndarray: dtype is %s, not float32", a.Dtype)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	out := make([]float32, a.Len())
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(a.Data[4*i:]))
	}
	return out, nil
}

// Int32s decodes the elements of an int32 array in row-major order.
func (a NDArray) Int32s() ([]int32, error) {
	if a.Dtype != DtypeInt32 {
		return nil, fmt.Errorf("ndarray: dtype is %s, not int32", a.Dtype)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	out := make([]int32, a.Len())
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(a.Data[4*i:]))
	}
	return out, nil
}
