// Package workspace gives rooted, read-mostly access to the directory tree
// databases point at. Every path is relative to the root; paths that would
// escape it are rejected.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// Entry is one directory or file in a listing.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Listing holds the immediate children of a directory, each group sorted
// ascending by name.
type Listing struct {
	Path        string
	Directories []Entry
	Files       []Entry
}

// Permission reports what the server process may do in a directory.
type Permission struct {
	Read  bool
	Write bool
}

// Granted reports read-write access.
func (p Permission) Granted() bool { return p.Read && p.Write }

// Workspace is a directory tree opened with os.Root.
type Workspace struct {
	root *os.Root
	dir  string
}

// Open opens dir as the workspace root.
func Open(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %s: %w", dir, err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", abs, err)
	}
	return &Workspace{root: root, dir: abs}, nil
}

// Close releases the root handle.
func (w *Workspace) Close() error { return w.root.Close() }

// Dir returns the absolute root directory.
func (w *Workspace) Dir() string { return w.dir }

// Ping checks that the root is still accessible.
func (w *Workspace) Ping(_ context.Context) error {
	if _, err := w.root.Stat("."); err != nil {
		return fmt.Errorf("stat workspace root: %w", err)
	}
	return nil
}

// Enumerate lists the directories and files directly under dir.
func (w *Workspace) Enumerate(dir string) (Listing, error) {
	rel, err := clean(dir)
	if err != nil {
		return Listing{}, err
	}
	f, err := w.root.Open(rel)
	if err != nil {
		return Listing{}, mapErr(rel, err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return Listing{}, mapErr(rel, err)
	}

	l := Listing{Path: toSlash(rel), Directories: []Entry{}, Files: []Entry{}}
	for _, e := range entries {
		entry := Entry{Name: e.Name(), Path: toSlash(filepath.Join(rel, e.Name()))}
		if info, err := e.Info(); err == nil {
			entry.ModTime = info.ModTime()
			if !e.IsDir() {
				entry.Size = info.Size()
			}
		}
		if e.IsDir() {
			l.Directories = append(l.Directories, entry)
		} else {
			l.Files = append(l.Files, entry)
		}
	}
	sort.Slice(l.Directories, func(i, j int) bool { return l.Directories[i].Name < l.Directories[j].Name })
	sort.Slice(l.Files, func(i, j int) bool { return l.Files[i].Name < l.Files[j].Name })
	return l, nil
}

// Permission probes read and write access to dir. Write access is tested
// by creating and removing a probe file.
func (w *Workspace) Permission(dir string) (Permission, error) {
	rel, err := clean(dir)
	if err != nil {
		return Permission{}, err
	}
	info, err := w.root.Stat(rel)
	if err != nil {
		return Permission{}, mapErr(rel, err)
	}
	if !info.IsDir() {
		return Permission{}, fmt.Errorf("%w: %s is not a directory", domain.ErrPermissionDenied, toSlash(rel))
	}

	var p Permission
	if f, err := w.root.Open(rel); err == nil {
		if _, err := f.ReadDir(1); err == nil || errors.Is(err, io.EOF) {
			p.Read = true
		}
		f.Close()
	}

	probe := filepath.Join(rel, ".lowcms-"+uuid.NewString())
	if f, err := w.root.OpenFile(probe, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600); err == nil {
		f.Close()
		p.Write = w.root.Remove(probe) == nil
	}
	return p, nil
}

// ReadJSON parses the JSON file at path, refusing files over maxBytes.
// A non-positive maxBytes disables the limit.
func (w *Workspace) ReadJSON(file string, maxBytes int64) (any, error) {
	rel, err := clean(file)
	if err != nil {
		return nil, err
	}
	f, err := w.root.Open(rel)
	if err != nil {
		return nil, mapErr(rel, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, mapErr(rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidSample, toSlash(rel))
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrInvalidSample, toSlash(rel), info.Size(), maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes)
	}
	v, err := value.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidSample, toSlash(rel), err)
	}
	return v, nil
}

// StripExtension drops the last extension of name. Names without a dot,
// or whose only dot is the leading one, are returned unchanged.
func StripExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name
	}
	return name[:i]
}

// clean converts a slash-separated workspace path to a local OS path.
func clean(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ".", nil
	}
	local := filepath.FromSlash(path.Clean(p))
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s is outside the workspace", domain.ErrPermissionDenied, p)
	}
	return local, nil
}

func toSlash(p string) string {
	if p == "." {
		return ""
	}
	return filepath.ToSlash(p)
}

func mapErr(rel string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, toSlash(rel))
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, toSlash(rel))
	default:
		return fmt.Errorf("access %s: %w", toSlash(rel), err)
	}
}
