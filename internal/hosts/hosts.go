// Package hosts keeps the shared host-resolution table in sync with live
// proxy containers. The table is a plain-text file of "<ip> <hostname>"
// lines (normally /etc/hosts) shared with everything else on the machine,
// so every mutation takes an advisory lock and removal rewrites through a
// temp file in the same directory.
//
// The lock lives in a sidecar file next to the table, not on the table
// itself: removal replaces the table by rename, and a lock taken on the
// table fd would survive the rename attached to the orphaned inode,
// letting a concurrent append land on a file nothing resolves anymore.
package hosts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// File is a handle on one host-resolution table.
type File struct {
	path string
}

// NewFile binds a handle to the table at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the table's location.
func (f *File) Path() string {
	return f.path
}

// lockPath returns the sidecar lock file guarding the table.
func (f *File) lockPath() string {
	return f.path + ".lock"
}

// lock takes the table's advisory lock and returns the release func.
// The table must only be opened after the lock is held, so the fd always
// refers to the current table and never to an inode a concurrent Remove
// has renamed away.
func (f *File) lock() (func(), error) {
	lockFile, err := os.OpenFile(f.lockPath(), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open hosts lock: %w", err)
	}
	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("lock hosts table: %w", err)
	}
	return func() {
		unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
		lockFile.Close()
	}, nil
}

// Add appends a "<ip> <hostname>" line. Repeated adds for the same
// hostname produce duplicate lines; the table is never deduplicated.
func (f *File) Add(hostname, ip string) error {
	unlock, err := f.lock()
	if err != nil {
		return err
	}
	defer unlock()

	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open hosts table: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%s %s\n", ip, hostname); err != nil {
		return fmt.Errorf("append hosts entry: %w", err)
	}
	return nil
}

// Remove drops every line containing hostname as a substring. This is the
// table's historical matching rule: a hostname that is a prefix of another
// removes both. The rewrite goes through a temp file and rename so readers
// never observe a half-written table.
func (f *File) Remove(hostname string) error {
	unlock, err := f.lock()
	if err != nil {
		return err
	}
	defer unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read hosts table: %w", err)
	}

	var kept []string
	for line := range strings.Lines(string(data)) {
		if strings.Contains(line, hostname) {
			continue
		}
		kept = append(kept, line)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp hosts table: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(strings.Join(kept, "")); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp hosts table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp hosts table: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp hosts table: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace hosts table: %w", err)
	}
	return nil
}
