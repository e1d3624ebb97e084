package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/opensh/opensh/cli"
	"github.com/opensh/opensh/config"
)

func TestApplyOptionOverrides(t *testing.T) {
	logger := zap.NewNop()
	cm := config.New(logger)
	cm.Load("")

	opts := &cli.Options{ErrExit: true, XTrace: true}
	applyOptionOverrides(cm, opts)

	assert.True(t, cm.GetBool("errexit"))
	assert.True(t, cm.GetBool("xtrace"))
	assert.False(t, cm.GetBool("nounset"))
	assert.False(t, cm.GetBool("posix"))
}

func TestApplyOptionOverridesLeavesUnsetFlagsAlone(t *testing.T) {
	logger := zap.NewNop()
	cm := config.New(logger)
	cm.Load("")
	cm.SetBool("nounset", true)

	applyOptionOverrides(cm, &cli.Options{})

	assert.True(t, cm.GetBool("nounset"), "flags absent from Options must not clear rc-file-set options")
}
