package fem

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferSize indicates a caller buffer of the wrong length.
	ErrBufferSize = errors.New("fem: buffer size mismatch")

	// ErrShapeMismatch indicates a shape layer and batch that disagree on sizes.
	ErrShapeMismatch = errors.New("fem: shape mismatch")
)

func bufferError(name string, got, want int) error {
	return fmt.Errorf("%w: %s has length %d, want %d", ErrBufferSize, name, got, want)
}
