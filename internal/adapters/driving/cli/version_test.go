package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_PrintsVersion(t *testing.T) {
	oldVersion := version
	SetVersion("1.2.3")
	defer func() {
		version = oldVersion
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "tutor version 1.2.3")
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	oldVersion := version
	defer func() {
		version = oldVersion
	}()

	SetVersion("")

	assert.Equal(t, oldVersion, version)
}
