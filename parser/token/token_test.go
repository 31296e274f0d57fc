// Copyright © 2018 The ELPS authors

package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	seen := make(map[string]Type)
	for typ := Type(0); typ < numTokenTypes; typ++ {
		str := typ.String()
		if !assert.NotEmpty(t, str, "token type %d", typ) {
			continue
		}
		prev, dup := seen[str]
		assert.False(t, dup, "%d and %d share the string %q", prev, typ, str)
		seen[str] = typ
	}
	assert.Equal(t, "invalid", numTokenTypes.String())
	assert.Equal(t, "@{", TABLE_L.String())
}

func TestLocationCopy(t *testing.T) {
	var nilLoc *Location
	assert.Nil(t, nilLoc.Copy())

	loc := &Location{File: "a", Line: 1, Col: 2}
	cp := loc.Copy()
	cp.Col = 7
	assert.Equal(t, 2, loc.Col)
	assert.Equal(t, "a:1:7", cp.String())
}

func TestLocationError(t *testing.T) {
	cause := errors.New("unmatched (")
	err := &LocationError{Err: cause, Source: &Location{File: "main.lisp", Line: 3, Col: 1}}
	assert.EqualError(t, err, "main.lisp:3:1: unmatched (")
	assert.ErrorIs(t, err, cause)

	err = &LocationError{Err: cause}
	assert.EqualError(t, err, "<unknown>: unmatched (")
}
