package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsInnerCode(t *testing.T) {
	inner := ParseError("sheet unreadable", io.ErrUnexpectedEOF)
	wrapped := Wrap(inner, "failed to load workbook")

	assert.Equal(t, CodeParseError, GetCode(wrapped))
	assert.Equal(t, "failed to load workbook: sheet unreadable: unexpected EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	wrapped := Wrapf(io.EOF, "reading %s", "x.xlsx")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCode_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", QueryError("bad sql", nil))
	assert.True(t, HasCode(err, CodeQueryError))
	assert.False(t, HasCode(nil, CodeQueryError))
}
