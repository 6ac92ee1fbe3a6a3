// SPDX-License-Identifier: MIT

package tensor

// Dense is a row-major D-dimensional array of float64.
// The zero value is not usable; construct with New.
type Dense struct {
	shape   []int
	strides []int
	data    []float64
}

// New wraps data in a Dense of the given shape. A nil data slice allocates
// zeros. The shape slice is copied; data is used as is (not copied).
//
// Errors:
//   - ErrBadShape when shape is empty or has a non-positive extent.
//   - ErrDataLength when len(data) != Π shape.
func New(shape []int, data []float64) (*Dense, error) {
	size, err := volume(shape)
	if err != nil {
		return nil, tensorErrorf(opNew, err)
	}
	if data == nil {
		data = make([]float64, size)
	}
	if len(data) != size {
		return nil, tensorErrorf(opNew, ErrDataLength)
	}

	sh := append([]int(nil), shape...)
	strides := make([]int, len(sh))
	stride := 1
	for k := len(sh) - 1; k >= 0; k-- {
		strides[k] = stride
		stride *= sh[k]
	}

	return &Dense{shape: sh, strides: strides, data: data}, nil
}

// volume returns Π shape or ErrBadShape.
func volume(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, ErrBadShape
	}
	size := 1
	for _, n := range shape {
		if n <= 0 {
			return 0, ErrBadShape
		}
		size *= n
	}

	return size, nil
}

// Shape returns a copy of the extents.
func (t *Dense) Shape() []int { return append([]int(nil), t.shape...) }

// NDim returns the number of axes D.
func (t *Dense) NDim() int { return len(t.shape) }

// Dim returns the extent of axis k.
func (t *Dense) Dim(k int) int { return t.shape[k] }

// Len returns the total number of elements.
func (t *Dense) Len() int { return len(t.data) }

// Data returns the backing slice in row-major order. Callers must treat it as
// read-only while an engine holds the array.
func (t *Dense) Data() []float64 { return t.data }

// Offset returns the flat position of a multi-index. It panics on a wrong
// index count, like slice indexing does.
func (t *Dense) Offset(idx ...int) int {
	if len(idx) != len(t.shape) {
		panic("tensor: index count does not match dimensionality")
	}
	off := 0
	for k, i := range idx {
		if i < 0 || i >= t.shape[k] {
			panic("tensor: index out of range")
		}
		off += i * t.strides[k]
	}

	return off
}

// At returns the element at the multi-index.
func (t *Dense) At(idx ...int) float64 { return t.data[t.Offset(idx...)] }

// Set stores v at the multi-index.
func (t *Dense) Set(v float64, idx ...int) { t.data[t.Offset(idx...)] = v }

// Clone returns a deep copy.
func (t *Dense) Clone() *Dense {
	return &Dense{
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
		data:    append([]float64(nil), t.data...),
	}
}
