package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamie8johnson/cqs/internal/graph"
)

func TestFilterDeadPubDropsExportedNamesByDefault(t *testing.T) {
	dead := []graph.DeadChunk{
		{Name: "Exported", Origin: "file:a.go", StartLine: 1, Confidence: graph.ConfidenceHigh},
		{Name: "unexported", Origin: "file:a.go", StartLine: 5, Confidence: graph.ConfidenceHigh},
	}

	filtered := filterDeadPub(dead, false)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "unexported", filtered[0].Name)
}

func TestFilterDeadPubKeepsExportedNamesWhenIncluded(t *testing.T) {
	dead := []graph.DeadChunk{
		{Name: "Exported", Origin: "file:a.go", StartLine: 1, Confidence: graph.ConfidenceHigh},
		{Name: "unexported", Origin: "file:a.go", StartLine: 5, Confidence: graph.ConfidenceHigh},
	}

	filtered := filterDeadPub(dead, true)
	assert.Len(t, filtered, 2)
}

func TestFilterDeadPubHandlesEmptyName(t *testing.T) {
	dead := []graph.DeadChunk{{Name: "", Origin: "file:a.go"}}
	assert.NotPanics(t, func() { filterDeadPub(dead, false) })
}
