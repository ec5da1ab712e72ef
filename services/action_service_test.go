//go:build unix

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbox/internal/config"
)

func TestActionService(t *testing.T) {
	a := NewActionService(map[string]config.ActionConfig{
		"hello":  {Text: "Say hello", Command: []string{"echo", "hello"}},
		"broken": {Text: "Always fails", Command: []string{"false"}},
	})
	ctx := context.Background()

	list := a.List()
	require.Len(t, list, 2)
	assert.Equal(t, "broken", list[0].Name)
	assert.Equal(t, "Say hello", list[1].Text)

	out, err := a.Run(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	_, err = a.Run(ctx, "broken")
	assert.Error(t, err)

	_, err = a.Run(ctx, "reboot")
	assert.ErrorIs(t, err, ErrActionNotFound)

	a.SetActions(nil)
	assert.Empty(t, a.List())
}
