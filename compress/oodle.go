package compress

import (
	"fmt"

	"github.com/gopak/gopak/errs"
)

// OodleCodec is the placeholder for the proprietary Oodle algorithm.
//
// Oodle ships as a closed-source native library, so this build carries no
// implementation. Archives whose slot table names Oodle still open fine;
// only entries stored in an Oodle slot fail, and callers who hold a binding
// can pass their own Codec to the builder to enable them.
type OodleCodec struct{}

var _ Codec = (*OodleCodec)(nil)

func (c OodleCodec) Compress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("%w: Oodle", errs.ErrUnsupportedCodec)
}

func (c OodleCodec) Decompress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("%w: Oodle", errs.ErrUnsupportedCodec)
}
