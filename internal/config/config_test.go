package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelVanie/vdebugger/internal/config"
)

func boolPtr(b bool) *bool { return &b }

func TestLoadRequiresTargetOrPID(t *testing.T) {
	_, err := config.Load("", 0, boolPtr(true), "")
	assert.Error(t, err)
}

func TestLoadWithTargetPath(t *testing.T) {
	sess, err := config.Load("./a.out", 0, boolPtr(true), "")
	require.NoError(t, err)
	assert.Equal(t, "./a.out", sess.TargetPath)
	assert.True(t, sess.NoASLR)
}

func TestLoadWithPIDOnly(t *testing.T) {
	sess, err := config.Load("", 1234, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1234, sess.PID)
}

func TestLoadUnsetFlagFallsBackToDefault(t *testing.T) {
	sess, err := config.Load("./a.out", 0, nil, "")
	require.NoError(t, err)
	assert.True(t, sess.NoASLR, "no_aslr defaults to true when the flag was never set")
}

func TestLoadExplicitFlagOverridesDefault(t *testing.T) {
	sess, err := config.Load("./a.out", 0, boolPtr(false), "")
	require.NoError(t, err)
	assert.False(t, sess.NoASLR, "an explicitly-set --no-aslr=false must win over the config/env default")
}
