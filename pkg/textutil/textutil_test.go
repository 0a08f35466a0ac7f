package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Jan Novák", expected: "jannovak"},
		{input: "  ČENĚK\tŠťastný\n", expected: "cenekstastny"},
		{input: "Mgr. Eva Dvořáková", expected: "mgr.evadvorakova"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, NormalizeName(row.input))
	}
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Mgr. Eva Dvořáková", []string{"dvorak"}))
	require.False(t, MatchName("Jan Novák", []string{"dvorak", "svoboda"}))
}
