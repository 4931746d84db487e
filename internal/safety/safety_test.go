package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
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

func TestNewGuard_Default(t *testing.T) {
	if g := NewGuard(0); g.maxBytes != DefaultMaxContextBytes {
		t.Errorf("maxBytes=%d, want %d", g.maxBytes, DefaultMaxContextBytes)
	}
	if g := NewGuard(10); g.maxBytes != 10 {
		t.Errorf("maxBytes=%d, want 10", g.maxBytes)
	}
}

func TestReadContext(t *testing.T) {
	dir := t.TempDir()
	g := NewGuard(16)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"ok", writeFile(t, dir, "ok.txt", []byte("brand: acme")), "brand: acme", nil},
		{"too large", writeFile(t, dir, "big.txt", []byte(strings.Repeat("x", 17))), "", ErrTooLarge},
		{"binary", writeFile(t, dir, "bin.dat", []byte{0xff, 0xfe, 0x00}), "", ErrBinary},
		{"directory", dir, "", ErrNotRegular},
		{"missing", filepath.Join(dir, "nope.txt"), "", os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.ReadContext(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err=%v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckFile_ResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "real.txt", []byte("x"))
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := NewGuard(0).CheckFile(link)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(target)
	if got != want {
		t.Errorf("resolved=%q, want %q", got, want)
	}
}
