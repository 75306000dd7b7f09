package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/config"
	"github.com/user/depth_filter_go/internal/log"
)

// options is the parsed command line.
type options struct {
	cfg   config.Config
	debug bool
}

// parseFlags builds the run config: defaults, then the -config file, then any
// flag given explicitly on the command line.
func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("depth_filter", flag.ContinueOnError)
	fs.SetOutput(output)

	cfgFile := fs.String("config", "", "Path to YAML config file (optional)")
	file := fs.String("file", "", "Path to the raw 16-bit depth frame")
	width := fs.Int("width", 0, "Frame width in pixels (default 424)")
	height := fs.Int("height", 0, "Frame height in pixels (default 240)")
	maxDepth := fs.Int("max-depth", 0, "Cap readings above this depth at max-depth (default 5000)")
	window := fs.Int("window", 0, "Median filter window, odd (default 5)")
	decimate := fs.Int("decimate-width", 0, "Decimate the frame to roughly this width before filtering (0 disables)")
	segment := fs.Bool("segment", true, "Segment the frame into depth regions before classifying")
	outDir := fs.String("out", "", "Directory for plots and reports; nothing is written when empty")
	debug := fs.Bool("debug", false, "Turn on debugging output")
	pdf := fs.Bool("pdf", false, "Write a PDF report (needs -out)")
	html := fs.Bool("html", false, "Write an interactive HTML row chart (needs -out)")
	csvOut := fs.Bool("csv", false, "Write the filtered frame and middle row as CSV (needs -out)")
	preview := fs.Bool("preview", false, "Write colourised PNG previews (needs -out)")
	writeFiltered := fs.Bool("write-filtered", false, "Write the filtered frame back as raw 16-bit little-endian (needs -out)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := config.Default()
	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)
		if err != nil {
			return options{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.FilePath = *file
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "max-depth":
			cfg.MaxDepth = *maxDepth
		case "window":
			cfg.MedianWindow = *window
		case "decimate-width":
			cfg.DecimateWidth = *decimate
		case "segment":
			cfg.Segment = *segment
		case "out":
			cfg.OutputDir = *outDir
		case "pdf":
			cfg.Artifacts.PDF = *pdf
		case "html":
			cfg.Artifacts.HTML = *html
		case "csv":
			cfg.Artifacts.CSV = *csvOut
		case "preview":
			cfg.Artifacts.Preview = *preview
		case "write-filtered":
			cfg.Artifacts.FilteredFrame = *writeFiltered
		}
	})

	if cfg.FilePath == "" {
		return options{}, errors.Wrap(config.ErrInvalidConfig, "no depth frame given; pass -file or set file in the config")
	}
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	return options{cfg: cfg, debug: *debug}, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "depth_filter: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(opts.debug); err != nil {
		fmt.Printf("can't initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := NewApp(opts.cfg)
	if err := app.Run(ctx); err != nil {
		log.Errorf("depth filter run failed: %v", err)
		log.Sync()
		cancel()
		os.Exit(1)
	}
}
