package safefile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func symlinkTo(t *testing.T, dir, target string) string {
	t.Helper()
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}
	return link
}

func TestRejectSymlink(t *testing.T) {
	dir := t.TempDir()
	regular := writeFile(t, dir, "regular.yaml", []byte("ok"))

	if err := RejectSymlink(regular); err != nil {
		t.Errorf("regular file should pass: %v", err)
	}
	if err := RejectSymlink(symlinkTo(t, dir, regular)); err == nil {
		t.Error("expected error for symlink")
	}
	if err := RejectSymlink(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for non-existent path")
	}
}

func TestReadFileMax(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "small.yaml", []byte("backend: {}"))
	big := writeFile(t, dir, "big.yaml", make([]byte, 2048))

	got, err := ReadFileMax(small, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "backend: {}" {
		t.Errorf("unexpected content %q", got)
	}

	if _, err := ReadFileMax(big, 1024); err == nil {
		t.Error("expected error for oversized file")
	}
	if _, err := ReadFileMax(symlinkTo(t, dir, small), 1024); err == nil {
		t.Error("expected error for symlink")
	}
}
