package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis"
)

func TestAnalyzers(t *testing.T) {
	list := analyzers()
	require.NoError(t, analysis.Validate(list))

	names := make(map[string]bool, len(list))
	for _, a := range list {
		names[a.Name] = true
	}
	for _, want := range []string{"SA4006", "S1000", "U1000", "bodyclose", "noexit", "errcompare", "shadow"} {
		assert.True(t, names[want], want)
	}
}
