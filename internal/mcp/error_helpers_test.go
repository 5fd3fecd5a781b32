package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWithSuggestions(t *testing.T) {
	err := NewErrorWithSuggestions("boom")
	assert.Equal(t, "boom", err.Error())

	err = TreeNotFoundError("/x/y")
	assert.Contains(t, err.Error(), "no tracked working tree contains /x/y")
	assert.Contains(t, err.Error(), "Did you mean to use one of these tools instead?")
	assert.Contains(t, err.Error(), "  - tree_list")
}

func TestInvalidParameterError(t *testing.T) {
	err := InvalidParameterError("path", "an absolute path")
	assert.Contains(t, err.Error(), "invalid path: expected an absolute path")
}
