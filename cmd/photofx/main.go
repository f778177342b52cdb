// Command photofx applies photofx filters to image files and renders
// slideshow transitions to PNG sequences.
//
// Usage:
//
//	photofx filter -kind vignetting -o out/ a.png b.png
//	photofx filter -action refocus.json -o out/ a.png
//	photofx transition -effect "chess board" -o frames/ a.png b.png
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/filter"
	"github.com/gogpu/photofx/raster"
	"github.com/gogpu/photofx/transition"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "filter":
		err = runFilter(ctx, os.Args[2:])
	case "transition":
		err = runTransition(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("photofx: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: photofx filter|transition [flags] files...")
	os.Exit(2)
}

// setVerbose routes library diagnostics to stderr.
func setVerbose(on bool) {
	if !on {
		return
	}
	photofx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func runFilter(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	var (
		kind    = fs.String("kind", "vignetting", "filter: vignetting, lut, refocus, lens or rotation")
		action  = fs.String("action", "", "JSON action file; overrides -kind")
		lutPath = fs.String("lut", "", "LUT image for -kind lut")
		angle   = fs.Float64("angle", 15, "angle in degrees for -kind rotation")
		depth16 = fs.Bool("16", false, "process at 16 bits per sample")
		outDir  = fs.String("o", ".", "output directory")
		workers = fs.Int("workers", 0, "parallel jobs (0 = GOMAXPROCS)")
		dump    = fs.Bool("dump", false, "print the action JSON and exit")
		verbose = fs.Bool("v", false, "verbose logging")
	)
	_ = fs.Parse(args)
	setVerbose(*verbose)

	a, err := loadAction(*action, *kind, *lutPath, *angle)
	if err != nil {
		return err
	}
	if *dump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no input files")
	}

	depth := raster.Depth8
	if *depth16 {
		depth = raster.Depth16
	}

	outputs, err := outputPaths(*outDir, fs.Args())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	jobs := make([]filter.Job, 0, fs.NArg())
	for _, path := range fs.Args() {
		src, err := raster.DecodeFile(path, depth)
		if err != nil {
			return err
		}
		if k, _ := filter.KindOf(a.Identifier); k == filter.KindRefocus {
			s, err := filter.RefocusSettingsFromAction(a)
			if err != nil {
				return err
			}
			src = raster.PadMirror(src, s.Padding())
		}
		f, err := filter.New(src, a)
		if err != nil {
			return err
		}
		jobs = append(jobs, filter.Job{ID: path, Filter: f})
	}

	failed := 0
	for _, r := range filter.RunBatch(ctx, jobs, *workers) {
		if r.Err != nil {
			log.Printf("%s: %v (%v)", r.ID, r.Status, r.Err)
			failed++
			continue
		}
		img := r.Image
		if r.Kind == filter.KindRefocus {
			if img, err = cropPadding(img, a); err != nil {
				return err
			}
		}
		if err := img.SaveFile(outputs[r.ID]); err != nil {
			return err
		}
		log.Printf("%s -> %s (%v)", r.ID, outputs[r.ID], r.Duration)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}

// outputPaths maps every input to its file in dir. Inputs that would
// write to the same file are rejected.
func outputPaths(dir string, inputs []string) (map[string]string, error) {
	outputs := make(map[string]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, path := range inputs {
		if _, ok := outputs[path]; ok {
			return nil, fmt.Errorf("input %s given twice", path)
		}
		out := filepath.Join(dir, filepath.Base(path))
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%s and %s both write %s", prev, path, out)
		}
		seen[out] = path
		outputs[path] = out
	}
	return outputs, nil
}

// loadAction reads an action file or builds the default action of kind.
func loadAction(path, kind, lutPath string, angle float64) (filter.Action, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return filter.Action{}, err
		}
		var a filter.Action
		if err := json.Unmarshal(data, &a); err != nil {
			return filter.Action{}, fmt.Errorf("%s: %w", path, err)
		}
		return a, nil
	}

	switch strings.ToLower(kind) {
	case "vignetting":
		return filter.DefaultVignettingSettings().Action(), nil
	case "lut":
		s := filter.DefaultLUTSettings()
		s.Path = lutPath
		return s.Action(), nil
	case "refocus":
		return filter.DefaultRefocusSettings().Action(), nil
	case "lens":
		return filter.DefaultLensSettings().Action(), nil
	case "rotation":
		s := filter.DefaultRotationSettings()
		s.Angle = angle
		return s.Action(), nil
	}
	return filter.Action{}, fmt.Errorf("%w: %q", filter.ErrUnknownFilter, kind)
}

// cropPadding removes the mirrored border added for refocus.
func cropPadding(img *raster.Image, a filter.Action) (*raster.Image, error) {
	s, err := filter.RefocusSettingsFromAction(a)
	if err != nil {
		return nil, err
	}
	pad := s.Padding()
	r := img.Bounds().Inset(pad)
	return raster.Crop(img, r)
}

func runTransition(args []string) error {
	fs := flag.NewFlagSet("transition", flag.ExitOnError)
	var (
		effect  = fs.String("effect", "Random", "effect name")
		width   = fs.Int("width", 640, "canvas width")
		height  = fs.Int("height", 480, "canvas height")
		seed    = fs.Uint64("seed", 0, "random seed (0 = process-wide source)")
		outDir  = fs.String("o", "frames", "output directory")
		list    = fs.Bool("list", false, "list effects and exit")
		verbose = fs.Bool("v", false, "verbose logging")
	)
	_ = fs.Parse(args)
	setVerbose(*verbose)

	if *list {
		for _, e := range transition.Effects() {
			fmt.Println(e)
		}
		return nil
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("transition needs an in and an out image")
	}

	eff, err := transition.ParseEffect(*effect)
	if err != nil {
		return err
	}
	var opts []transition.Option
	if *seed != 0 {
		opts = append(opts, transition.WithRandom(transition.NewRandom(*seed)))
	}
	e := transition.NewEngine(opts...)
	if err := e.SetOutputSize(*width, *height); err != nil {
		return err
	}

	for i, path := range fs.Args() {
		src, err := raster.DecodeFile(path, raster.Depth8)
		if err != nil {
			return err
		}
		fitted, err := e.FitImage(src)
		if err != nil {
			return err
		}
		set := e.SetInImage
		if i == 1 {
			set = e.SetOutImage
		}
		if err := set(fitted); err != nil {
			return err
		}
	}
	e.SetEffect(eff)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	total := 0
	for n := 0; ; n++ {
		frame, wait := e.CurrentFrame()
		name := filepath.Join(*outDir, fmt.Sprintf("frame%04d.png", n))
		if err := frame.SaveFile(name); err != nil {
			return err
		}
		if wait < 0 {
			log.Printf("%v: %d frames, %d ms", e.ActiveEffect(), n+1, total)
			return nil
		}
		total += wait
	}
}
