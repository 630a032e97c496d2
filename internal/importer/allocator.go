package importer

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/clubelocal/partners-cli/internal/store"
)

// CodeAllocator hands out the sequential codes of one run. The whole
// range is reserved at the store up front, so concurrent runs cannot
// overlap and no further store access is needed per row.
type CodeAllocator struct {
	base  int64
	count int
	width int
}

// NewCodeAllocator reserves count codes and returns an allocator over them.
func NewCodeAllocator(ctx context.Context, st store.Store, count, width int) (*CodeAllocator, error) {
	base, err := st.ReserveCodes(ctx, count)
	if err != nil {
		return nil, eris.Wrap(err, "importer: reserve code range")
	}
	return &CodeAllocator{base: base, count: count, width: width}, nil
}

// Code returns the zero-padded code for a row offset. Offsets are assigned
// by row position and never reused within a run.
func (a *CodeAllocator) Code(offset int) string {
	return fmt.Sprintf("%0*d", a.width, a.base+int64(offset))
}

// Base returns the first reserved code value.
func (a *CodeAllocator) Base() int64 {
	return a.base
}
