package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{name: "plain description", input: "Pro plan, billed monthly", contains: []string{"Pro plan, billed monthly"}},
		{name: "emphasis", input: "**Annual** plan", contains: []string{"<strong>Annual</strong>"}},
		{name: "strikethrough", input: "~~Starter~~ Pro", contains: []string{"<del>Starter</del>"}},
		{
			name:     "link keeps href",
			input:    "[terms](https://example.com/terms)",
			contains: []string{`<a href="https://example.com/terms"`, "terms</a>"},
		},
		{name: "script removed", input: `<script>alert("x")</script>`, excludes: []string{"<script>"}},
		{
			name:     "javascript link removed",
			input:    "[pay](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{name: "event handler removed", input: `<img src="x.png" onerror="alert(1)">`, excludes: []string{"onerror"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderMarkdown(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, result, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, result, s)
			}
		})
	}
}

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}
