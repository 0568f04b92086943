package cli

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artemshloyda/imagecompressor/internal/config"
	"github.com/artemshloyda/imagecompressor/internal/profiles"
	"github.com/artemshloyda/imagecompressor/internal/storage"
)

// runCLI выполняет команду с журналом во временной директории.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	a := &app{cfg: config.DefaultConfig(), stdout: &buf}
	cmd := newRootCmd(a)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "app.log")))
	err := cmd.Execute()
	return buf.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "imagecompressor "+Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestCompress_Directory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(in, 0755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(in, "a.png"), 40, 30)
	writePNG(t, filepath.Join(in, "b.png"), 20, 20)

	out, err := runCLI(t, in, "-o", outDir, "-f", "jpeg", "--no-progress", "--no-history")
	if err != nil {
		t.Fatalf("compress error = %v\n%s", err, out)
	}

	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if !strings.Contains(out, "Записано: 2 из 2") {
		t.Errorf("summary missing in output:\n%s", out)
	}
}

func TestCompress_FailuresReturnError(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "bad.png")
	writePNG(t, good, 10, 10)
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, good, bad, "-o", outDir, "-f", "png", "--no-progress", "--no-history")
	if !errors.Is(err, ErrBatchFailures) {
		t.Fatalf("error = %v, want ErrBatchFailures", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "good.png")); err != nil {
		t.Errorf("good file not written: %v", err)
	}
}

func TestCompress_RenameAndHistory(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	db := filepath.Join(dir, "history.sqlite")
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, 16, 8)

	out, err := runCLI(t, src, "-o", outDir, "-f", "png", "--pattern", "img_{number}_{width}x{height}",
		"--start", "7", "--db", db, "--no-progress")
	if err != nil {
		t.Fatalf("compress error = %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "img_007_16x8.png")); err != nil {
		t.Fatalf("renamed output missing: %v", err)
	}

	out, err = runCLI(t, "history", "--db", db)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "Пакетов") || !strings.Contains(out, "png") {
		t.Errorf("history output = %q", out)
	}
}

func TestCompress_UnknownProfile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writePNG(t, src, 4, 4)

	_, err := runCLI(t, src, "-o", dir, "--profile", "Nope",
		"--profiles-file", filepath.Join(dir, "p.json"), "--no-history")
	if !errors.Is(err, profiles.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestProfiles_SaveUsesConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "imagecompressor.yaml")
	profilesPath := filepath.Join(dir, "profiles.json")
	yaml := "output:\n  format: png\n  quality: 50\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	// Формат из файла, качество и размер из флагов
	_, err := runCLI(t, "profiles", "save", "Mine", "--config", cfgPath,
		"--profiles-file", profilesPath, "-q", "70", "--width", "640", "--height", "480")
	if err != nil {
		t.Fatalf("profiles save error = %v", err)
	}

	store := profiles.NewStore(profilesPath, nil)
	store.Load()
	p, ok := store.Get("Mine")
	if !ok {
		t.Fatal("profile Mine not saved")
	}
	want := profiles.Profile{Format: config.FormatPNG, Quality: 70, Resize: true, Width: 640, Height: 480}
	if p != want {
		t.Errorf("profile = %+v, want %+v", p, want)
	}

	out, err := runCLI(t, "profiles", "list", "--profiles-file", profilesPath)
	if err != nil {
		t.Fatalf("profiles list error = %v", err)
	}
	for _, name := range []string{profiles.Custom, "Mine", "Web Optimized"} {
		if !strings.Contains(out, name) {
			t.Errorf("list output missing %q", name)
		}
	}
}

func TestProfiles_SaveReservedName(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "profiles", "save", profiles.Custom,
		"--profiles-file", filepath.Join(dir, "p.json"))
	if !errors.Is(err, profiles.ErrReservedName) {
		t.Errorf("error = %v, want ErrReservedName", err)
	}
}

func TestPreview_Thumbnail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.png")
	thumb := filepath.Join(dir, "thumb.png")
	writePNG(t, src, 200, 600)

	out, err := runCLI(t, "preview", src, "--thumb", thumb)
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	if !strings.Contains(out, "200x600") {
		t.Errorf("preview output missing size: %q", out)
	}

	f, err := os.Open(thumb)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != 300 || cfg.Width != 100 {
		t.Errorf("thumbnail = %dx%d, want 100x300", cfg.Width, cfg.Height)
	}
}

func TestWriteExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ExampleConfigName)

	if err := writeExampleConfig(path, false); err != nil {
		t.Fatalf("first write error = %v", err)
	}
	if err := writeExampleConfig(path, false); err == nil {
		t.Error("second write without force should fail")
	}
	if err := writeExampleConfig(path, true); err != nil {
		t.Errorf("write with force error = %v", err)
	}

	fc, err := config.LoadFromFile(path)
	if err != nil || fc == nil {
		t.Errorf("generated config does not load: %v", err)
	}
}

func TestWatch_ExistingFilesSkipOutputDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	if err := os.Mkdir(filepath.Join(dir, "out"), 0755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "out", "a.png"), 4, 4)

	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	a := &app{cfg: cfg, stdout: io.Discard}

	got := a.existingFiles(dir).Paths()
	if len(got) != 1 || filepath.Dir(got[0]) != dir {
		t.Errorf("existingFiles() = %v, want только %s", got, filepath.Join(dir, "a.png"))
	}
}

func TestCompress_SetupErrorClosesJournalRun(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.sqlite")
	src := filepath.Join(dir, "a.png")
	writePNG(t, src, 4, 4)

	// Выходная директория внутри обычного файла не создаётся
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, src, "-o", filepath.Join(blocker, "out"), "-f", "png", "--db", db, "--no-progress"); err == nil {
		t.Fatal("ожидалась ошибка создания выходной директории")
	}

	store, err := storage.New(db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != storage.RunDone {
		t.Fatalf("runs = %+v, want один закрытый пакет", runs)
	}
	if n, err := store.CleanupInterrupted(); err != nil || n != 0 {
		t.Errorf("CleanupInterrupted() = %d, %v, want 0", n, err)
	}
}

func TestCompress_ConfigWarningsReachLogFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writePNG(t, src, 4, 4)
	profilesPath := filepath.Join(dir, "profiles.json")
	if err := os.WriteFile(profilesPath, []byte("{bad"), 0644); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(dir, "logs", "app.log")

	var buf bytes.Buffer
	a := &app{cfg: config.DefaultConfig(), stdout: &buf}
	cmd := newRootCmd(a)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{src, "-o", filepath.Join(dir, "out"), "--profile", "High Quality",
		"--profiles-file", profilesPath, "--no-history", "--log-file", logPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v\n%s", err, buf.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "повреждённый файл профилей") {
		t.Errorf("журнал не содержит предупреждение о профилях:\n%s", data)
	}
}
