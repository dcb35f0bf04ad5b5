package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/towplan/internal/frame"
)

func TestParseGoal(t *testing.T) {
	got, err := parseGoal("12.5, -3")
	require.NoError(t, err)
	assert.Equal(t, frame.EnginePoint{X: 12.5, Z: -3}, got)

	for _, bad := range []string{"", "1", "1,2,3", "a,2", "1,b"} {
		_, err := parseGoal(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadSceneDefault(t *testing.T) {
	sc, err := loadScene("", 3)
	require.NoError(t, err)
	require.NotNil(t, sc.Follower)
	assert.Equal(t, -3.0, sc.Follower.Position.Z)
	assert.Empty(t, sc.Boxes)
}
