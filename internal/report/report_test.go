package report

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/inventario/internal/apperr"
)

func resetTheme(t *testing.T) {
	t.Helper()
	mu.Lock()
	installed, active = false, plainTheme()
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		installed, active = false, plainTheme()
		mu.Unlock()
	})
}

func TestReport_KeepsOriginalMessage(t *testing.T) {
	resetTheme(t)

	originals := []error{
		apperr.Config(errors.New("missing required configuration key(s): redis")),
		apperr.IO(&fs.PathError{Op: "open", Path: "config/x.yaml", Err: fs.ErrNotExist}),
		apperr.ErrToken,
		fmt.Errorf("bootstrap: %w", apperr.Database(errors.New("connection refused"))),
		errors.Join(errors.New("close db"), errors.New("close redis")),
	}

	for _, orig := range originals {
		r := New(orig)
		assert.Contains(t, r.Error(), orig.Error())

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf))
		assert.Contains(t, buf.String(), orig.Error())
	}
}

func TestReport_RendersCauses(t *testing.T) {
	resetTheme(t)

	cause := &fs.PathError{Op: "open", Path: "config/x.yaml", Err: fs.ErrNotExist}
	err := fmt.Errorf("load config: %w", apperr.Config(cause))

	var buf bytes.Buffer
	require.NoError(t, New(err).Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "Error: load config: open config/x.yaml: file does not exist")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, " 0: open config/x.yaml: file does not exist")
	assert.Contains(t, out, " 1: file does not exist")
	// The transparent taxonomy wrapper is folded into its cause.
	assert.NotContains(t, out, " 2:")
}

func TestReport_NoCauses(t *testing.T) {
	resetTheme(t)

	var buf bytes.Buffer
	require.NoError(t, New(errors.New("boom")).Render(&buf))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestReport_HasNoUnwrap(t *testing.T) {
	var err error = New(apperr.Cache(errors.New("down")))
	assert.Nil(t, errors.Unwrap(err))
}

func TestNew_Nil(t *testing.T) {
	assert.Nil(t, New(nil))
}

func TestInstall_Twice(t *testing.T) {
	resetTheme(t)

	require.NoError(t, Install(&bytes.Buffer{}))

	err := Install(&bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindLogInit))
}

func TestExit(t *testing.T) {
	resetTheme(t)

	code := -1
	prev := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = prev })

	Exit(errors.New("fatal"))
	assert.Equal(t, 1, code)
}
