package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wbrown/imganalogy"
	"github.com/wbrown/imganalogy/imageutil"
)

// envInt reads an integer default from the environment, falling back to
// def when the variable is unset or malformed.
func envInt(name string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return v
	}
	return def
}

func envFloat(name string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(name), 64); err == nil {
		return v
	}
	return def
}

// loadInput reads an image, shrinks it to width if it is wider, and
// converts it to float RGB.
func loadInput(path string, width int) (*imageutil.FloatImage, error) {
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img = imageutil.ResizeToWidth(img, width, imageutil.InterpolationArea)
	return imageutil.FloatFromRGBA(img), nil
}

func main() {
	_ = godotenv.Load(".env")
	defaults := imganalogy.DefaultConfig()

	aFile := flag.String("a", "", "Path to the unfiltered source image A (required)")
	apFile := flag.String("ap", "", "Path to the filtered source image A′ (required)")
	bFile := flag.String("b", "", "Path to the target image B (required)")
	outFile := flag.String("out", "out.png", "Path to save the synthesized B′")
	levels := flag.Int("levels", envInt("ANALOGY_LEVELS", 4),
		"Number of pyramid levels")
	padSm := flag.Int("pad-sm", defaults.PadSm,
		"Half-width of the coarse level patch")
	padLg := flag.Int("pad-lg", defaults.PadLg,
		"Half-width of the fine level patch")
	kappa := flag.Float64("kappa", envFloat("ANALOGY_KAPPA", defaults.Kappa),
		"Coherence bias, 0 to disable")
	checks := flag.Int("checks", envInt("ANALOGY_CHECKS", defaults.Checks),
		"Distance evaluations per approximate search, 0 for exact search")
	trees := flag.Int("trees", defaults.Trees,
		"Number of randomised kd-trees per level")
	seed := flag.Int64("seed", defaults.Seed,
		"Seed for index construction and coarse level initialisation")
	gray := flag.Bool("gray", false,
		"Match on luminance only and keep B's colour")
	width := flag.Int("width", 0,
		"Shrink inputs wider than this, 0 to keep the original size")
	verbose := flag.Bool("v", false, "Log per-level progress")
	flag.Parse()

	if *aFile == "" || *apFile == "" || *bFile == "" {
		fmt.Println("Please provide the images using the -a, -ap and -b flags")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := imganalogy.NewConfig(*padSm, *padLg, 3)
	c.Kappa = *kappa
	c.Checks = *checks
	c.Trees = *trees
	c.Seed = *seed

	if err := run(ctx, c, *aFile, *apFile, *bFile, *outFile, *levels, *width, *gray); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c imganalogy.Config, aFile, apFile, bFile, outFile string,
	levels, width int, gray bool) error {
	beginInit := time.Now()

	a, err := loadInput(aFile, width)
	if err != nil {
		return err
	}
	ap, err := loadInput(apFile, width)
	if err != nil {
		return err
	}
	b, err := loadInput(bFile, width)
	if err != nil {
		return err
	}
	if a.Width != ap.Width || a.Height != ap.Height {
		return fmt.Errorf("A is %dx%d but A′ is %dx%d",
			a.Width, a.Height, ap.Width, ap.Height)
	}

	bColor := b
	if gray {
		a, ap, b = imageutil.Luminance(a), imageutil.Luminance(ap), imageutil.Luminance(b)
	}

	c.NumCh = a.Channels

	aPyr := imganalogy.BuildPyramid(a, levels, 2*c.PadLg+1)
	apPyr := imganalogy.BuildPyramid(ap, len(aPyr), 1)
	bPyr := imganalogy.BuildPyramid(b, len(aPyr), 1)
	if len(bPyr) != len(aPyr) {
		return fmt.Errorf("B is too small for %d levels", len(aPyr))
	}

	s, err := imganalogy.NewSynthesizer(aPyr, apPyr, c)
	if err != nil {
		return err
	}
	endInit := time.Now()
	fmt.Printf("levels: %d, descriptor length: %d\n", s.Levels(), c.DescriptorLen())
	fmt.Printf("Initialization time: %v\n", endInit.Sub(beginInit))

	res, err := s.Synthesize(ctx, bPyr)
	if err != nil {
		return err
	}
	endComputation := time.Now()

	out := res.Pyramid.Finest()
	if gray {
		out = imageutil.ReplaceLuminance(bColor, out)
	}
	if err := imageutil.SaveFloatImage(out, outFile); err != nil {
		return err
	}
	fmt.Printf("Output written to %s\n", outFile)

	fmt.Printf("Computation time: %v\n", endComputation.Sub(endInit))
	for level := 1; level < len(res.Coherent); level++ {
		fmt.Printf("Level %d: %d of %d pixels from coherence\n", level,
			res.Coherent[level], res.Sources[level].Len())
	}
	return nil
}
