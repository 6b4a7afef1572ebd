// Package archive builds and unpacks the gzipped tarballs stored on IPFS.
// Packing is deterministic: identical trees produce byte-identical archives
// and therefore identical CIDs.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// epoch is the fixed mtime recorded for every entry.
var epoch = time.Unix(0, 0).UTC()

// Pack streams dir's contents (not dir itself) into w as a gzipped tar.
// Entries are written in lexical walk order with zeroed mtimes, uid/gid 0
// and modes normalized to 0644/0755 by the executable bit. Broken symlinks
// are reported through warn and skipped; symlinks to regular files are
// followed and stored as regular files.
func Pack(dir string, w io.Writer, warn func(format string, args ...any)) error {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			return tw.WriteHeader(&tar.Header{
				Typeflag: tar.TypeDir,
				Name:     name + "/",
				Mode:     0755,
				ModTime:  epoch,
			})
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				warn("skipping broken symlink %s", name)
				return nil
			}
			if !target.Mode().IsRegular() {
				warn("skipping symlink %s: target is not a regular file", name)
				return nil
			}
			return writeFile(tw, path, name, target)
		}

		if !d.Type().IsRegular() {
			warn("skipping %s: not a regular file", name)
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return writeFile(tw, path, name, fi)
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func writeFile(tw *tar.Writer, path, name string, fi fs.FileInfo) error {
	mode := int64(0644)
	if fi.Mode().Perm()&0111 != 0 {
		mode = 0755
	}
	if err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     mode,
		Size:     fi.Size(),
		ModTime:  epoch,
	}); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}

// Extract streams a gzipped tar from r into targetDir, creating it and any
// parents. The pipeline never materializes the archive in memory. Entries
// that would escape targetDir are rejected.
func Extract(r io.Reader, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", targetDir, err)
	}
	root, err := filepath.Abs(targetDir)
	if err != nil {
		return err
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("invalid gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid tar stream: %w", err)
		}
		target, err := secureJoin(root, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		default:
			// symlinks and specials are never produced by Pack
			continue
		}
	}
}

// secureJoin resolves name under root and rejects path traversal.
func secureJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry %q has an absolute path", name)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the target directory", name)
	}
	return target, nil
}
