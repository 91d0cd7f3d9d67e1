// Package frame supplies raw frames to the scan loop.
//
// A live deployment feeds the orchestrator from a camera; this package
// provides the file-backed sources used by the CLI and tests. Sources
// distinguish "no frame ready right now" (nil frame, nil error) from
// exhaustion (io.EOF) so the orchestrator can skip a tick without treating
// it as a failure.
package frame

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source produces one frame per call.
//
// Next returns (nil, nil) when no frame is ready yet, and (nil, io.EOF)
// when the source is exhausted. Any other error describes a frame that
// could not be acquired; callers may retry on the next tick.
type Source interface {
	Next() (image.Image, error)
}

// DirSource replays the image files of a directory as a frame sequence, in
// lexical filename order. It reads lazily, one file per Next call.
type DirSource struct {
	paths []string
	index int
}

// NewDirSource lists the PNG, JPEG and GIF files under dir.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	sort.Strings(paths)

	return &DirSource{paths: paths}, nil
}

// Next decodes and returns the next frame in sequence.
func (s *DirSource) Next() (image.Image, error) {
	if s.index >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.index]
	s.index++

	img, err := loadImage(path)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Remaining reports how many frames have not been returned yet.
func (s *DirSource) Remaining() int {
	return len(s.paths) - s.index
}

// StillSource repeats a single image for a fixed number of frames, then
// reports io.EOF. A non-positive count repeats forever.
type StillSource struct {
	img   image.Image
	count int
}

// NewStillSource wraps img as a repeating source.
func NewStillSource(img image.Image, count int) *StillSource {
	return &StillSource{img: img, count: count}
}

func (s *StillSource) Next() (image.Image, error) {
	if s.count == 0 {
		return nil, io.EOF
	}
	if s.count > 0 {
		s.count--
	}
	return s.img, nil
}

// NewStillSourceFromFile loads one image file as a repeating source.
func NewStillSourceFromFile(path string, count int) (*StillSource, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return NewStillSource(img, count), nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
