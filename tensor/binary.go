// SPDX-License-Identifier: MIT

package tensor

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadBinary reads Π shape little-endian float64 values from r and reshapes
// them row-major. The stream must hold exactly that many values.
//
// Errors:
//   - ErrBadShape for an invalid shape.
//   - ErrDataLength when the stream is shorter or longer than expected.
//   - Underlying I/O errors, wrapped.
func ReadBinary(r io.Reader, shape []int) (*Dense, error) {
	size, err := volume(shape)
	if err != nil {
		return nil, tensorErrorf(opReadBinary, err)
	}

	br := bufio.NewReader(r)
	data := make([]float64, size)
	if err = binary.Read(br, binary.LittleEndian, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, tensorErrorf(opReadBinary, fmt.Errorf("%w: want %d values", ErrDataLength, size))
		}
		return nil, tensorErrorf(opReadBinary, err)
	}
	if _, err = br.ReadByte(); err == nil {
		return nil, tensorErrorf(opReadBinary, fmt.Errorf("%w: trailing bytes after %d values", ErrDataLength, size))
	} else if !errors.Is(err, io.EOF) {
		return nil, tensorErrorf(opReadBinary, err)
	}

	return New(shape, data)
}

// LoadBinary opens path and delegates to ReadBinary.
func LoadBinary(path string, shape []int) (*Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, tensorErrorf(opLoadBinary, err)
	}
	defer f.Close()

	t, err := ReadBinary(f, shape)
	if err != nil {
		return nil, tensorErrorf(opLoadBinary, fmt.Errorf("%s: %w", path, err))
	}

	return t, nil
}

// WriteBinary writes the array as flat little-endian float64 values.
func WriteBinary(w io.Writer, t *Dense) error {
	return binary.Write(w, binary.LittleEndian, t.data)
}
