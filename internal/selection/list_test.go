package selection

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsImagePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.png", true},
		{"a.JPG", true},
		{"a.jpeg", true},
		{"dir/a.WebP", true},
		{"favicon.ico", true},
		{"a.gif", false},
		{"a.txt", false},
		{"noext", false},
		{".png", true},
	}

	for _, tt := range tests {
		if got := IsImagePath(tt.path); got != tt.want {
			t.Errorf("IsImagePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestList_AddFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.jpg"))
	b := touch(t, filepath.Join(dir, "sub", "b.png"))
	touch(t, filepath.Join(dir, "sub", "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden", "c.png"))
	touch(t, filepath.Join(dir, "sub", "._b.png"))
	touch(t, filepath.Join(dir, "sub", "out.imagecompressor-tmp-converting.png"))
	txt := touch(t, filepath.Join(t.TempDir(), "readme.txt"))

	l := NewList(nil)
	added, rejected := l.Add(a, filepath.Join(dir, "sub"), txt, filepath.Join(dir, "missing.png"))

	if added != 2 {
		t.Errorf("added = %d, want 2 (%v)", added, l.Paths())
	}
	if len(rejected) != 2 {
		t.Errorf("rejected = %v, want 2 пути", rejected)
	}

	want := []string{a, b}
	got := l.Paths()
	if len(got) != len(want) {
		t.Fatalf("Paths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Paths()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestList_AcceptsUserNamesThatLookTemporary(t *testing.T) {
	dir := t.TempDir()
	names := []string{"photo.source.png", "a.converting.jpg", "tmp.png"}
	for _, n := range names {
		touch(t, filepath.Join(dir, n))
	}
	touch(t, filepath.Join(dir, "b.imagecompressor-tmp-source.png"))

	l := NewList(nil)
	if added, _ := l.Add(dir); added != len(names) {
		t.Errorf("added = %d, want %d (%v)", added, len(names), l.Paths())
	}
}

func TestList_IgnoreNestedOutputDir(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "out", "a.webp"))
	touch(t, filepath.Join(dir, "out", "deep", "b.png"))

	l := NewList(nil)
	l.Ignore(filepath.Join(dir, "out"))
	l.Add(dir)

	if got := l.Paths(); len(got) != 1 || got[0] != a {
		t.Errorf("Paths() = %v, want только %s", got, a)
	}

	// Явно переданный файл из игнорируемой директории принимается
	if added, _ := l.Add(filepath.Join(dir, "out", "a.webp")); added != 1 {
		t.Errorf("явный файл не добавлен")
	}
}

func TestList_SkipsHiddenDirsOnWalk(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, ".imagecompressor", "x.png"))

	l := NewList(nil)
	if added, _ := l.Add(dir); added != 1 {
		t.Errorf("added = %d, want 1 (%v)", added, l.Paths())
	}
}

func TestList_Dedupe(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.png"))

	l := NewList(nil)
	l.Add(a)
	l.Add(a, dir)

	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestList_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "b.jpg"))

	l := NewList([]string{"jpg"})
	l.Add(dir)
	if l.Len() != 1 || filepath.Base(l.Paths()[0]) != "b.jpg" {
		t.Errorf("Paths() = %v, want только b.jpg", l.Paths())
	}
}

func TestList_RemoveRetainClear(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.png"))
	b := touch(t, filepath.Join(dir, "b.png"))
	c := touch(t, filepath.Join(dir, "c.png"))

	l := NewList(nil)
	l.Add(a, b, c)

	if err := l.Remove(1); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := l.Remove(5); err == nil {
		t.Error("Remove(5) должен вернуть ошибку")
	}
	if got := l.Paths(); len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("после Remove: %v", got)
	}

	// Удалённый файл можно добавить снова
	if added, _ := l.Add(b); added != 1 {
		t.Error("удалённый файл не добавился повторно")
	}

	l.Retain([]string{c})
	if got := l.Paths(); len(got) != 1 || got[0] != c {
		t.Errorf("после Retain: %v", got)
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() после Clear = %d", l.Len())
	}
}
