package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("tab", km.ToggleMode))
	assert.True(t, Matches("enter", km.Submit))
	assert.True(t, Matches("k", km.Up))
	assert.True(t, Matches("down", km.Down))
	assert.True(t, Matches("/", km.NewQuery))
	assert.False(t, Matches("x", km.Quit))
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Len(t, km.ResultsHelp(), 5)
	assert.Len(t, km.FullHelp(), 3)
	assert.Equal(t, "search/ask", km.ToggleMode.Help().Desc)
}
