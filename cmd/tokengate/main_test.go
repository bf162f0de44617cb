package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodsCommand(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"methods"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "totalSupply() -> uint256")
	assert.Contains(t, out.String(), "isTokenHolder(address account) -> bool")
}

func TestRootRejectsArgs(t *testing.T) {
	rootCmd.SetArgs([]string{"extra"})
	assert.Error(t, rootCmd.Execute())
}
