package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/fpang/photo-slideshow/internal/cli"
	"github.com/fpang/photo-slideshow/internal/config"
	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/fpang/photo-slideshow/internal/geometry"
	"github.com/fpang/photo-slideshow/internal/logging"
	"github.com/fpang/photo-slideshow/internal/metrics"
	"github.com/fpang/photo-slideshow/internal/slideshow"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	geometryFlag string
	shuffleFlag  bool
	outputFlag   string
	configFlag   string
	fpsFlag      int
	codecFlag    string
	threadsFlag  int
	workersFlag  int
	forceFlag    bool
	dryRunFlag   bool
	metricsFlag  bool
	logLevelFlag string
	maxDepthFlag int
	limitFlag    int
)

// cfg is loaded once per invocation in loadConfig.
var (
	cfg        *config.Config
	configPath string
)

// rootCmd is the main Cobra command for the slideshow CLI.
var rootCmd = &cobra.Command{
	Use:   "slideshow [flags] <audio> <image|directory>...",
	Short: "Build a video slideshow from photos timed to a soundtrack",
	Long: `Slideshow turns a list of photos and an audio file into a video whose
length matches the audio. Every photo is turned upright from its EXIF
orientation, letterboxed onto a black canvas, and shown for an equal share of
the soundtrack.

Directory arguments are expanded to the images they contain, sorted by path.
Images that cannot be read are skipped with a warning.

Examples:
  slideshow song.mp3 ./vacation
  slideshow -g 1280x720 -o trip.mp4 song.m4a a.jpg b.jpg c.jpg
  slideshow -g auto --shuffle song.wav ./photos --max-depth 1
  slideshow -g none song.mp3 ./photos --limit 50
  slideshow --dry-run song.mp3 ./vacation`,
	Args:              validateArgs,
	PersistentPreRunE: loadConfig,
	RunE:              runMain,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a sample configuration file",
	Args:  cobra.MaximumNArgs(1),
	// skip loadConfig so a broken config file can be replaced
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runConfigInit,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&geometryFlag, "geometry", "g", "", "Canvas size: WIDTHxHEIGHT, auto (largest image) or none (no resizing); default 1920x1080")
	flags.BoolVarP(&shuffleFlag, "shuffle", "s", false, "Shuffle the image order")
	flags.StringVarP(&outputFlag, "output", "o", "", "Output video file (default from config, slideshow.mp4)")
	flags.IntVar(&fpsFlag, "fps", 0, "Output frame rate (default from config, 25)")
	flags.StringVar(&codecFlag, "codec", "", "ffmpeg video codec (default from config, libx264)")
	flags.IntVar(&threadsFlag, "threads", 0, "ffmpeg thread count (default from config, CPU count)")
	flags.IntVar(&workersFlag, "workers", 0, "Parallel image transforms (default from config, CPU count)")
	flags.BoolVar(&forceFlag, "force", false, "Overwrite the output file if it exists")
	flags.BoolVar(&dryRunFlag, "dry-run", false, "Print the frame allocation plan without building the video")
	flags.BoolVar(&metricsFlag, "metrics", false, "Print an EMF metrics line for the run to stdout")
	flags.IntVar(&maxDepthFlag, "max-depth", 0, "Maximum recursion depth for directory arguments (0 = unlimited)")
	flags.IntVar(&limitFlag, "limit", 0, "Maximum images taken from each directory argument (0 = unlimited)")

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration file (default ~/.config/slideshow/config.toml or ./slideshow.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: need an audio file and at least one image or directory, got %d argument(s)",
			slideshow.ErrInvalidArgument, len(args))
	}
	return nil
}

// loadConfig reads .env, the config file and flag overrides, then sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	start := time.Now()
	loaded, path, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	applyFlags(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("%w: %w", slideshow.ErrInvalidArgument, err)
	}
	cfg, configPath = loaded, path

	logging.Init(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	logging.NewStartupLogger("slideshow").
		Version(versionString()).
		ConfigFile(configPath).
		Tool("ffmpeg", cfg.Tools.FFmpeg).
		Tool("ffprobe", cfg.Tools.FFprobe).
		Feature("shuffle", shuffleFlag).
		Feature("dry_run", dryRunFlag).
		Feature("force", forceFlag).
		Feature("metrics", cfg.Metrics.Enabled).
		Config("fps", strconv.Itoa(cfg.Video.FrameRate)).
		Config("codec", cfg.Video.Codec).
		Config("pixel_format", cfg.Video.PixelFormat).
		Config("threads", strconv.Itoa(cfg.Video.Threads)).
		Config("workers", strconv.Itoa(cfg.Images.Workers)).
		Config("staging_dir", cfg.Paths.StagingDir).
		LoadDuration(time.Since(start)).
		Log()
	return nil
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("fps") {
		c.Video.FrameRate = fpsFlag
	}
	if flags.Changed("codec") {
		c.Video.Codec = codecFlag
	}
	if flags.Changed("threads") {
		c.Video.Threads = threadsFlag
	}
	if flags.Changed("workers") {
		c.Images.Workers = workersFlag
	}
	if flags.Changed("output") {
		c.Video.Output = outputFlag
	}
	if flags.Changed("metrics") {
		c.Metrics.Enabled = metricsFlag
	}
	if flags.Changed("log-level") {
		c.Logging.Level = strings.ToLower(logLevelFlag)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mode, err := geometry.ParseMode(geometryFlag)
	if err != nil {
		return fmt.Errorf("%w: %w", slideshow.ErrInvalidArgument, err)
	}

	audio, images, err := cli.ExpandInputs(args[0], args[1:], scanOptions())
	if err != nil {
		return err
	}

	output, err := filepath.Abs(cfg.Video.Output)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	if !dryRunFlag {
		if err := cli.CheckOutput(output, forceFlag); err != nil {
			return err
		}
	}

	if !strings.EqualFold(filepath.Ext(audio), ".wav") {
		if err := filehandler.CheckFFprobeAvailable(cfg.Tools.FFprobe); err != nil {
			return err
		}
	}

	pipeline := newPipeline()
	job := slideshow.Job{
		AudioPath:  audio,
		Images:     images,
		Geometry:   mode,
		Shuffle:    shuffleFlag,
		OutputPath: output,
	}

	log.Info().
		Str("audio", audio).
		Int("images", len(images)).
		Str("geometry", mode.String()).
		Bool("shuffle", shuffleFlag).
		Str("output", output).
		Msg("Starting slideshow")

	if dryRunFlag {
		plan, err := pipeline.Plan(ctx, job)
		if err != nil {
			return err
		}
		return cli.RenderPlan(cmd.OutOrStdout(), plan)
	}

	if err := filehandler.CheckFFmpegAvailable(cfg.Tools.FFmpeg); err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, job)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Slideshow written to %s\n", result.OutputPath)
	fmt.Fprintf(out, "  Length:   %s\n", cli.FormatLength(result.AudioSeconds, result.Frames, cfg.Video.FrameRate))
	fmt.Fprintf(out, "  Canvas:   %s\n", result.Geometry)
	fmt.Fprintf(out, "  Images:   %d shown, %d skipped\n", result.ImagesProcessed, result.ImagesSkipped)
	fmt.Fprintf(out, "  Time:     %s transform, %s encode\n",
		result.TransformTime.Round(time.Millisecond), result.EncodeTime.Round(time.Millisecond))
	return nil
}

func scanOptions() filehandler.ScanOptions {
	return filehandler.ScanOptions{MaxDepth: maxDepthFlag, Limit: limitFlag}
}

func newPipeline() *slideshow.Pipeline {
	p := &slideshow.Pipeline{
		Prober:  &filehandler.FFprobeProber{Path: cfg.Tools.FFprobe},
		Encoder: &filehandler.FFmpegEncoder{Path: cfg.Tools.FFmpeg},
		Runner: &slideshow.Runner{
			Workers:     cfg.Images.Workers,
			JPEGQuality: cfg.Images.JPEGQuality,
			Progress:    cli.NewProgress(os.Stderr),
		},
		FrameRate:   cfg.Video.FrameRate,
		Codec:       cfg.Video.Codec,
		PixelFormat: cfg.Video.PixelFormat,
		Threads:     cfg.Video.Threads,
		StagingDir:  cfg.Paths.StagingDir,
	}
	if cfg.Metrics.Enabled {
		p.Metrics = metrics.New(cfg.Metrics.Namespace)
	}
	return p
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFlag
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", slideshow.ErrInvalidArgument, path)
	}
	if err := config.CreateSample(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
	return nil
}
