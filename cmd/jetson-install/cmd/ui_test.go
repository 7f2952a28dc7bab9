package cmd

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestSummaryLine(t *testing.T) {
	defer func(prev bool) { color.NoColor = prev }(color.NoColor)
	color.NoColor = true

	line := summaryLine(3, 1)
	assert.Contains(t, line, "[4 checks]")
	assert.Contains(t, line, "3 passed")
	assert.Contains(t, line, "1 failed")

	assert.NotContains(t, summaryLine(3, 0), "failed")
}
