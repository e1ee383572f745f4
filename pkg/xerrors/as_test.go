package xerrors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flier/avmcore/pkg/avm"
	"github.com/flier/avmcore/pkg/xerrors"
)

func TestAsA(t *testing.T) {
	base := avm.NewError(avm.CodeArgumentOutOfRange, "bad index")
	wrapped := fmt.Errorf("outer: %w", base)

	e, ok := xerrors.AsA[*avm.Error](wrapped)
	assert.True(t, ok)
	assert.Equal(t, avm.CodeArgumentOutOfRange, e.Code)

	_, ok = xerrors.AsA[*avm.Error](fmt.Errorf("plain"))
	assert.False(t, ok)
}
