package hosts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func newTestFile(t *testing.T, content string) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return NewFile(path)
}

func readTable(t *testing.T, f *File) string {
	t.Helper()
	data, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	return string(data)
}

func TestAdd(t *testing.T) {
	f := newTestFile(t, "127.0.0.1 localhost\n")

	if err := f.Add("abc.execute-api.us-east-1.amazonaws.com", "10.200.0.9"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got := readTable(t, f)
	want := "127.0.0.1 localhost\n10.200.0.9 abc.execute-api.us-east-1.amazonaws.com\n"
	if got != want {
		t.Errorf("table = %q, want %q", got, want)
	}
}

func TestAdd_DuplicatesAreKept(t *testing.T) {
	f := newTestFile(t, "")

	for i := 0; i < 2; i++ {
		if err := f.Add("abc.example.test", "10.0.0.1"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	got := readTable(t, f)
	if strings.Count(got, "abc.example.test") != 2 {
		t.Errorf("expected both duplicate lines kept, table = %q", got)
	}
}

func TestAdd_CreatesMissingTable(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "hosts"))

	if err := f.Add("abc.example.test", "10.0.0.1"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if readTable(t, f) != "10.0.0.1 abc.example.test\n" {
		t.Error("table should contain exactly the added line")
	}
}

func TestRemove(t *testing.T) {
	f := newTestFile(t,
		"127.0.0.1 localhost\n"+
			"10.200.0.9 abc.execute-api.us-east-1.amazonaws.com\n"+
			"10.200.0.10 xyz.execute-api.us-east-1.amazonaws.com\n")

	if err := f.Remove("abc.execute-api.us-east-1.amazonaws.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	got := readTable(t, f)
	if strings.Contains(got, "abc.execute-api") {
		t.Errorf("removed hostname still present: %q", got)
	}
	if !strings.Contains(got, "localhost") || !strings.Contains(got, "xyz.execute-api") {
		t.Errorf("unrelated lines lost: %q", got)
	}
}

func TestRemove_SubstringMatch(t *testing.T) {
	// Historical semantics: matching is by substring, so a hostname that
	// is a prefix of another takes both lines with it.
	f := newTestFile(t,
		"10.0.0.1 abc.example.test\n"+
			"10.0.0.2 abc.example.test.internal\n"+
			"10.0.0.3 other.example.test\n")

	if err := f.Remove("abc.example.test"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	got := readTable(t, f)
	if got != "10.0.0.3 other.example.test\n" {
		t.Errorf("table = %q, want only the unrelated line", got)
	}
}

func TestRemove_RemovesDuplicates(t *testing.T) {
	f := newTestFile(t, "")
	for i := 0; i < 3; i++ {
		if err := f.Add("dup.example.test", "10.0.0.1"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if err := f.Remove("dup.example.test"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if got := readTable(t, f); got != "" {
		t.Errorf("table = %q, want empty", got)
	}
}

func TestAdd_SurvivesConcurrentRewrite(t *testing.T) {
	// An append racing a removal must land in the table the removal
	// installed, not in the inode it renamed away. Hold the lock, let the
	// add block on it, replace the table the way Remove does, then release.
	f := newTestFile(t, "127.0.0.1 localhost\n10.0.0.5 dead.example.test\n")

	lockFile, err := os.OpenFile(f.Path()+".lock", os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatalf("open lock: %v", err)
	}
	defer lockFile.Close()
	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX); err != nil {
		t.Fatalf("flock: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- f.Add("fresh.example.test", "10.0.0.9")
	}()

	tmpPath := filepath.Join(filepath.Dir(f.Path()), "hosts.rewrite")
	if err := os.WriteFile(tmpPath, []byte("127.0.0.1 localhost\n"), 0o644); err != nil {
		t.Fatalf("write replacement: %v", err)
	}
	if err := os.Rename(tmpPath, f.Path()); err != nil {
		t.Fatalf("rename replacement: %v", err)
	}

	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_UN); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got := readTable(t, f)
	if !strings.Contains(got, "10.0.0.9 fresh.example.test") {
		t.Errorf("appended mapping missing from current table: %q", got)
	}
	if strings.Contains(got, "dead.example.test") {
		t.Errorf("rewrite was not the base of the append: %q", got)
	}
}

func TestRemove_MissingTable(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "hosts"))

	if err := f.Remove("anything"); err != nil {
		t.Errorf("Remove on a missing table should be a no-op, got %v", err)
	}
}

func TestRemove_NoMatchLeavesTableIntact(t *testing.T) {
	content := "127.0.0.1 localhost\n10.0.0.1 a.example.test\n"
	f := newTestFile(t, content)

	if err := f.Remove("nomatch.example.test"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if got := readTable(t, f); got != content {
		t.Errorf("table = %q, want unchanged %q", got, content)
	}
}
