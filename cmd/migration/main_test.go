package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{" 3 "})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	_, err = parseSteps([]string{"0"})
	assert.Error(t, err)
	_, err = parseSteps([]string{"two"})
	assert.Error(t, err)
}

func TestParseVersionAndTarget(t *testing.T) {
	v, err := parseVersion("1767225600")
	require.NoError(t, err)
	assert.Equal(t, 1767225600, v)

	_, err = parseVersion("-1")
	assert.Error(t, err)

	target, err := parseTarget("1767398400")
	require.NoError(t, err)
	assert.Equal(t, uint(1767398400), target)

	_, err = parseTarget("latest")
	assert.Error(t, err)
}
