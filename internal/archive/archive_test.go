package archive

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestPackExtractRoundTrip(t *testing.T) {
	src := t.TempDir()
	files := map[string]string{
		"lib.config.json": `{"name":"foo","version":"1.0.0"}`,
		"src/main.c":      "int main() { return 0; }",
		"src/util/u.h":    "#pragma once",
		"README.md":       "# foo",
	}
	writeTree(t, src, files)

	var buf bytes.Buffer
	require.NoError(t, Pack(src, &buf, nil))

	dst := filepath.Join(t.TempDir(), "out", "nested")
	require.NoError(t, Extract(&buf, dst))

	for name, content := range files {
		data, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}
}

func TestPackContentsAtRoot(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "a"})

	var buf bytes.Buffer
	require.NoError(t, Pack(src, &buf, nil))

	names := tarNames(t, buf.Bytes())
	assert.Equal(t, []string{"a.txt"}, names)
}

func TestPackDeterministic(t *testing.T) {
	files := map[string]string{
		"z.txt":     "zzz",
		"a/b.txt":   "b",
		"a/a.txt":   "a",
		"m/n/o.txt": "deep",
	}

	src1 := t.TempDir()
	writeTree(t, src1, files)
	src2 := t.TempDir()
	// write in a different order with different mtimes
	writeTree(t, src2, map[string]string{"m/n/o.txt": "deep"})
	writeTree(t, src2, map[string]string{"a/a.txt": "a", "z.txt": "zzz", "a/b.txt": "b"})

	var buf1, buf2 bytes.Buffer
	require.NoError(t, Pack(src1, &buf1, nil))
	require.NoError(t, Pack(src2, &buf2, nil))
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())
}

func TestPackExecutableBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no unix permissions on windows")
	}
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "run.sh"), []byte("#!/bin/sh\n"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "data.txt"), []byte("x"), 0640))

	var buf bytes.Buffer
	require.NoError(t, Pack(src, &buf, nil))

	dst := t.TempDir()
	require.NoError(t, Extract(bytes.NewReader(buf.Bytes()), dst))

	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	info, err = os.Stat(filepath.Join(dst, "data.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestPackBrokenSymlinkWarns(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src := t.TempDir()
	writeTree(t, src, map[string]string{"ok.txt": "ok"})
	require.NoError(t, os.Symlink(filepath.Join(src, "missing"), filepath.Join(src, "dangling")))

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, format)
	}

	var buf bytes.Buffer
	require.NoError(t, Pack(src, &buf, warn))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "broken symlink")
	assert.Equal(t, []string{"ok.txt"}, tarNames(t, buf.Bytes()))
}

func TestExtractRejectsTraversal(t *testing.T) {
	evil := makeTar(t, func(tw *tar.Writer) {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     "../escape.txt",
			Mode:     0644,
			Size:     4,
		}))
		_, err := tw.Write([]byte("evil"))
		require.NoError(t, err)
	})

	dst := t.TempDir()
	err := Extract(bytes.NewReader(evil), filepath.Join(dst, "target"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
	assert.NoFileExists(t, filepath.Join(dst, "escape.txt"))
}

func TestExtractRejectsAbsolutePath(t *testing.T) {
	evil := makeTar(t, func(tw *tar.Writer) {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     "/etc/evil",
			Mode:     0644,
			Size:     0,
		}))
	})
	err := Extract(bytes.NewReader(evil), t.TempDir())
	require.Error(t, err)
}

func TestExtractBadStream(t *testing.T) {
	err := Extract(bytes.NewReader([]byte("not a gzip stream")), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

func makeTar(t *testing.T, build func(tw *tar.Writer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	build(tw)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func tarNames(t *testing.T, data []byte) []string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	return names
}
