// SPDX-License-Identifier: MIT

package tensor

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape indicates an empty shape or a non-positive extent.
	ErrBadShape = errors.New("tensor: invalid shape")

	// ErrDataLength indicates that the data length does not match Π shape.
	ErrDataLength = errors.New("tensor: data length does not match shape")

	// ErrAxis indicates a free axis out of range, repeated or not ascending.
	ErrAxis = errors.New("tensor: invalid free axes")

	// ErrFactorMismatch indicates factor matrices that do not fit the array.
	ErrFactorMismatch = errors.New("tensor: factor matrices do not match array")
)

const (
	opNew         = "New"
	opReadBinary  = "ReadBinary"
	opLoadBinary  = "LoadBinary"
	opContract    = "ContractExcept"
	opReconstruct = "Reconstruct"
)

func tensorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
