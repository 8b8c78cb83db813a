package outputpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_DerivesFromBasename(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	defer os.Chdir(old)
	os.Chdir(dir)

	path, err := Resolve("/usr/bin/myprog", "", false, false)
	require.NoError(t, err)
	require.Equal(t, "myprog.log", path)
}

func TestResolve_RotatesOnCollision(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	defer os.Chdir(old)
	os.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "myprog.log"), nil, 0o644))

	path, err := Resolve("/usr/bin/myprog", "", false, false)
	require.NoError(t, err)
	require.Equal(t, "myprog-1.log", path)
}

func TestResolve_ExplicitExistingWithoutForceOrAppendIsError(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "t.log")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	_, err := Resolve("cmd", target, false, false)
	require.Error(t, err)
}

func TestResolve_ExplicitExistingWithForceIsAllowed(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "t.log")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	path, err := Resolve("cmd", target, true, false)
	require.NoError(t, err)
	require.Equal(t, target, path)
}
