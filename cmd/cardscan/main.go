package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/cardmat/cardscan/internal/contour"
	"github.com/cardmat/cardscan/internal/frame"
	"github.com/cardmat/cardscan/internal/geometry"
	"github.com/cardmat/cardscan/internal/layout"
	"github.com/cardmat/cardscan/internal/ocr"
	"github.com/cardmat/cardscan/internal/preprocess"
	"github.com/cardmat/cardscan/internal/scan"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("cardscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	var (
		framesDir = flag.String("frames", "", "directory of frame images, replayed in filename order")
		imagePath = flag.String("image", "", "single image used as a repeating frame")
		repeat    = flag.Int("repeat", 10, "how many times -image is repeated (negative repeats forever)")
		markers   = flag.String("markers", "", "JSON-lines file of per-frame marker detections; enables marker mode")
		overlay   = flag.String("overlay", "", "write a localization overlay PNG for -image and exit")
		out       = flag.String("out", "", "write the final record JSON to this file instead of stdout")
		lang      = flag.String("lang", "eng", "tesseract language")
		noOCR     = flag.Bool("no-ocr", false, "skip text recognition, report localization only")
	)
	flag.Usage = usage
	flag.Parse()

	log := newLogger()

	cfg, err := scan.LoadConfigFromEnv()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	loc, err := buildLocalizer(*markers)
	if err != nil {
		log.WithError(err).Fatal("failed to build localizer")
	}

	if *overlay != "" {
		if *imagePath == "" {
			log.Fatal("-overlay requires -image")
		}
		if err := writeOverlay(loc, *imagePath, *overlay); err != nil {
			log.WithError(err).Fatal("overlay failed")
		}
		return
	}

	src, err := buildSource(*framesDir, *imagePath, *repeat)
	if err != nil {
		log.WithError(err).Fatal("failed to open frame source")
	}

	var recognizer ocr.Recognizer = ocr.NewTesseract(*lang)
	if *noOCR {
		recognizer = nullRecognizer{}
	}

	orch, err := scan.New(cfg, loc, recognizer, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build orchestrator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orch.Run(ctx, src); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("scan loop failed")
	}

	if err := writeRecord(orch.Record(), *out); err != nil {
		log.WithError(err).Fatal("failed to write record")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "cardscan - trading card scanner")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: cardscan [options]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Environment variables:")
	fmt.Fprintln(os.Stderr, "  CARDSCAN_LOG_LEVEL             debug, info, warn or error (default info)")
	fmt.Fprintln(os.Stderr, "  CARDSCAN_STABILITY_THRESHOLD   consecutive frames before dispatch")
	fmt.Fprintln(os.Stderr, "  CARDSCAN_TICK_INTERVAL         frame cadence, e.g. 250ms")
	fmt.Fprintln(os.Stderr, "  CARDSCAN_COOLDOWN              pause after a scan, e.g. 30s")
	fmt.Fprintln(os.Stderr, "  CARDSCAN_DISPATCH_GAP          minimum spacing between scans")
	fmt.Fprintln(os.Stderr, "  CARDSCAN_CANONICAL_WIDTH       rectified card width in pixels")
	fmt.Fprintln(os.Stderr, "  CARDSCAN_CANONICAL_HEIGHT      rectified card height in pixels")
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(os.Getenv("CARDSCAN_LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
	return log
}

// buildLocalizer picks marker mode when a marker feed is given, contour
// mode otherwise.
func buildLocalizer(markerFile string) (scan.Localizer, error) {
	lay := layout.DefaultCardLayout()
	if markerFile == "" {
		params := contour.DefaultParams(lay.AspectRatio())
		return scan.NewContourLocalizer(preprocess.DefaultOptions(), params), nil
	}

	resolver, err := layout.NewResolver(lay)
	if err != nil {
		return nil, err
	}
	feed, err := openMarkerFeed(markerFile)
	if err != nil {
		return nil, err
	}
	return scan.NewMarkerLocalizer(feed, resolver), nil
}

func buildSource(framesDir, imagePath string, repeat int) (frame.Source, error) {
	switch {
	case framesDir != "" && imagePath != "":
		return nil, fmt.Errorf("-frames and -image are mutually exclusive")
	case framesDir != "":
		return frame.NewDirSource(framesDir)
	case imagePath != "":
		return frame.NewStillSourceFromFile(imagePath, repeat)
	default:
		return nil, fmt.Errorf("one of -frames or -image is required")
	}
}

// markerFeed replays marker detections from a JSON-lines file, one line per
// frame. It stands in for a live fiducial detector.
type markerFeed struct {
	frames [][]layout.Marker
	index  int
}

type markerJSON struct {
	ID      int           `json:"id"`
	Corners [4][2]float64 `json:"corners"`
}

func openMarkerFeed(path string) (*markerFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open marker feed: %w", err)
	}
	defer f.Close()

	feed := &markerFeed{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			feed.frames = append(feed.frames, nil)
			continue
		}
		var raw []markerJSON
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("marker feed line %d: %w", len(feed.frames)+1, err)
		}
		ms := make([]layout.Marker, len(raw))
		for i, m := range raw {
			ms[i].ID = m.ID
			for c, p := range m.Corners {
				ms[i].Corners[c] = geometry.Point{X: p[0], Y: p[1]}
			}
		}
		feed.frames = append(feed.frames, ms)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read marker feed: %w", err)
	}
	return feed, nil
}

// Detect returns the detections recorded for the next frame. Past the end
// of the feed every frame is empty.
func (f *markerFeed) Detect(img image.Image) ([]layout.Marker, error) {
	if f.index >= len(f.frames) {
		return nil, nil
	}
	ms := f.frames[f.index]
	f.index++
	return ms, nil
}

// nullRecognizer reports empty text for every region.
type nullRecognizer struct{}

func (nullRecognizer) Recognize(ctx context.Context, img image.Image) (ocr.Recognition, error) {
	return ocr.Recognition{}, nil
}

// writeOverlay localizes the card in one image and saves it with the found
// quadrilateral drawn on top.
func writeOverlay(loc scan.Localizer, imagePath, outPath string) error {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	res, err := loc.Localize(img)
	if err != nil {
		return err
	}
	if res.Quad == nil {
		return fmt.Errorf("no card found in %s", imagePath)
	}
	fmt.Fprintf(os.Stderr, "found card via %s (confidence %.2f)\n", res.Method, res.Confidence)

	over := preprocess.Overlay(img, []geometry.Quad{*res.Quad})
	if err := imaging.Save(over, outPath); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

func writeRecord(rec scan.Record, outPath string) error {
	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
