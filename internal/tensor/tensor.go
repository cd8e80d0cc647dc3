// Package tensor holds dense numeric arrays of arbitrary rank as they travel
// between JSON request bodies and model predictors.
//
// A Tensor is a shape plus row-major float64 data. FromNested builds one from
// the nested []any / float64 values produced by encoding/json, and Nested turns
// it back into plain nested slices for serialization.
package tensor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrRagged is returned when sibling sub-arrays have different lengths.
	ErrRagged = errors.New("tensor: ragged nested array")
	// ErrNotNumeric is returned when a leaf value is not a number.
	ErrNotNumeric = errors.New("tensor: non-numeric element")
	// ErrShape is returned by New when the data length does not match the shape.
	ErrShape = errors.New("tensor: data length does not match shape")
)

// Tensor is a dense row-major numeric array. The zero value is an empty
// rank-1 array.
type Tensor struct {
	shape []int
	data  []float64
}

// New builds a Tensor from an explicit shape and row-major data.
// An empty shape denotes a scalar and requires exactly one element.
func New(shape []int, data []float64) (Tensor, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return Tensor{}, fmt.Errorf("%w: negative dimension %d", ErrShape, d)
		}
		n *= d
	}
	if n != len(data) {
		return Tensor{}, fmt.Errorf("%w: shape %v wants %d elements, got %d", ErrShape, shape, n, len(data))
	}
	return Tensor{
		shape: append([]int(nil), shape...),
		data:  append([]float64(nil), data...),
	}, nil
}

// Scalar returns a rank-0 tensor.
func Scalar(v float64) Tensor { return Tensor{shape: []int{}, data: []float64{v}} }

// Vector returns a rank-1 tensor over a copy of v.
func Vector(v []float64) Tensor {
	return Tensor{shape: []int{len(v)}, data: append([]float64(nil), v...)}
}

// Matrix returns a rank-2 tensor from rows. All rows must share a length.
func Matrix(rows [][]float64) (Tensor, error) {
	if len(rows) == 0 {
		return Tensor{shape: []int{0}}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Tensor{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRagged, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return Tensor{shape: []int{len(rows), cols}, data: data}, nil
}

// FromNested converts a nested array of numbers into a Tensor. Accepted leaf
// types are the Go numeric kinds and json.Number; accepted containers are []any
// and the common typed slices.
func FromNested(v any) (Tensor, error) {
	v = normalize(v)
	var shape []int
	for cur := v; ; {
		arr, ok := cur.([]any)
		if !ok {
			break
		}
		shape = append(shape, len(arr))
		if len(arr) == 0 {
			break
		}
		cur = normalize(arr[0])
	}
	if shape == nil {
		shape = []int{}
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, 0, n)
	if err := flatten(v, shape, 0, "$", &data); err != nil {
		return Tensor{}, err
	}
	return Tensor{shape: shape, data: data}, nil
}

func flatten(v any, shape []int, depth int, path string, out *[]float64) error {
	v = normalize(v)
	if depth == len(shape) {
		f, err := toFloat(v)
		if err != nil {
			return fmt.Errorf("%w at %s: %v", ErrNotNumeric, path, err)
		}
		*out = append(*out, f)
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%w at %s: expected array of length %d", ErrRagged, path, shape[depth])
	}
	if len(arr) != shape[depth] {
		return fmt.Errorf("%w at %s: length %d, want %d", ErrRagged, path, len(arr), shape[depth])
	}
	for i, el := range arr {
		if err := flatten(el, shape, depth+1, path+"["+strconv.Itoa(i)+"]", out); err != nil {
			return err
		}
	}
	return nil
}

// normalize lifts typed slices into []any so a single walker handles both.
func normalize(v any) any {
	switch x := v.(type) {
	case []float64:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case []float32:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case []int:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case [][]float64:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case [][]float32:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	}
	return v
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case nil:
		return 0, errors.New("null")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// Shape returns a copy of the dimensions.
func (t Tensor) Shape() []int {
	if t.shape == nil {
		return []int{0}
	}
	return append([]int(nil), t.shape...)
}

// Rank is the number of dimensions.
func (t Tensor) Rank() int {
	if t.shape == nil {
		return 1
	}
	return len(t.shape)
}

// Len is the total number of elements.
func (t Tensor) Len() int { return len(t.data) }

// Data returns a copy of the row-major elements.
func (t Tensor) Data() []float64 { return append([]float64(nil), t.data...) }

// Rows views the tensor as a list of rows: a scalar or vector is a single row,
// a matrix is its rows. Higher ranks are flattened over the leading dimensions.
func (t Tensor) Rows() [][]float64 {
	shape := t.Shape()
	switch len(shape) {
	case 0:
		return [][]float64{t.Data()}
	case 1:
		return [][]float64{t.Data()}
	}
	cols := shape[len(shape)-1]
	nrows := 1
	for _, d := range shape[:len(shape)-1] {
		nrows *= d
	}
	out := make([][]float64, nrows)
	for i := range out {
		out[i] = append([]float64(nil), t.data[i*cols:(i+1)*cols]...)
	}
	return out
}

// Nested converts the tensor back into plain nested slices: a float64 for a
// scalar, otherwise []any nested Rank() deep.
func (t Tensor) Nested() any {
	shape := t.Shape()
	if len(shape) == 0 {
		if len(t.data) == 0 {
			return nil
		}
		return t.data[0]
	}
	v, _ := t.build(shape, 0)
	return v
}

func (t Tensor) build(shape []int, offset int) (any, int) {
	if len(shape) == 1 {
		out := make([]any, shape[0])
		for i := range out {
			out[i] = t.data[offset+i]
		}
		return out, offset + shape[0]
	}
	out := make([]any, shape[0])
	for i := range out {
		out[i], offset = t.build(shape[1:], offset)
	}
	return out, offset
}

// Equal reports whether both tensors have the same shape and elements.
// NaN elements compare equal to each other.
func (t Tensor) Equal(o Tensor) bool {
	a, b := t.Shape(), o.Shape()
	if len(a) != len(b) || len(t.data) != len(o.data) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	for i := range t.data {
		x, y := t.data[i], o.data[i]
		if x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
			return false
		}
	}
	return true
}

// String renders the nested form.
func (t Tensor) String() string {
	b, err := json.Marshal(t.Nested())
	if err != nil {
		return fmt.Sprintf("tensor%v", t.Shape())
	}
	return string(b)
}

// MarshalJSON encodes the nested form.
func (t Tensor) MarshalJSON() ([]byte, error) { return json.Marshal(t.Nested()) }

// UnmarshalJSON decodes a nested numeric array.
func (t *Tensor) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	nt, err := FromNested(v)
	if err != nil {
		return err
	}
	*t = nt
	return nil
}
