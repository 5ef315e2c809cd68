package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestDefaultStyles_RenderText(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("archivist"), "archivist")
	assert.Contains(t, s.Citation.Render("https://example.test"), "https://example.test")
	assert.Contains(t, s.Answer.Render("grounded"), "grounded")
}
