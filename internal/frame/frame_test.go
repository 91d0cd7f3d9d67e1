package frame

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestDirSource_LexicalOrderAndEOF(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), color.White)
	writePNG(t, filepath.Join(dir, "a.png"), color.Black)

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource failed: %v", err)
	}
	if src.Remaining() != 2 {
		t.Errorf("remaining: got %d, want 2", src.Remaining())
	}

	first, err := src.Next()
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	// a.png (black) sorts before b.png (white).
	if r, _, _, _ := first.At(0, 0).RGBA(); r != 0 {
		t.Error("frames not in lexical filename order")
	}

	if _, err := src.Next(); err != nil {
		t.Fatalf("second Next: %v", err)
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestDirSource_EmptyDir(t *testing.T) {
	if _, err := NewDirSource(t.TempDir()); err == nil {
		t.Error("empty directory should fail")
	}
}

func TestDirSource_SkipsNonImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame.png"), color.White)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource failed: %v", err)
	}
	if src.Remaining() != 1 {
		t.Errorf("remaining: got %d, want 1", src.Remaining())
	}
}

func TestStillSource(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src := NewStillSource(img, 2)

	for i := 0; i < 2; i++ {
		got, err := src.Next()
		if err != nil || got == nil {
			t.Fatalf("frame %d: got (%v, %v)", i, got, err)
		}
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestStillSource_Unbounded(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src := NewStillSource(img, -1)
	for i := 0; i < 100; i++ {
		if _, err := src.Next(); err != nil {
			t.Fatalf("unbounded source ended at frame %d: %v", i, err)
		}
	}
}
