package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "keeps formatting",
			in:       "<h2>Cura</h2><p>Annaffiare <strong>poco</strong></p><ul><li>sole</li></ul>",
			contains: []string{"<h2>Cura</h2>", "<strong>poco</strong>", "<li>sole</li>"},
		},
		{
			name:     "drops scripts and handlers",
			in:       `<p onclick="steal()">ok</p><script>alert(1)</script>`,
			contains: []string{"<p>ok</p>"},
			excludes: []string{"script", "onclick", "alert"},
		},
		{
			name:     "external links open in a new tab",
			in:       `<a href="https://example.com/seeds">semi</a>`,
			contains: []string{`href="https://example.com/seeds"`, `target="_blank"`, "noopener", "noreferrer"},
		},
		{
			name:     "javascript urls removed",
			in:       `<a href="javascript:alert(1)">x</a>`,
			excludes: []string{"javascript"},
		},
		{
			name:     "images not allowed",
			in:       `<img src="https://example.com/a.png">`,
			excludes: []string{"<img"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := HTML(tt.in)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestHTML_Empty(t *testing.T) {
	assert.Equal(t, "", HTML(""))
}
