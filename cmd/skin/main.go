// Skin extracts the boundary surface of a mesh snapshot and prints a
// summary of the result.
//
// Usage:
//
//	go run ./cmd/skin -generate 64x64x64 -blank 0.1 -out block.mskn
//	go run ./cmd/skin -in block.mskn -merge-points -workers 8
//
// Every flag can also be set in a config file (-config skin.yaml) or through
// the environment with the MESHSKIN_ prefix, e.g. MESHSKIN_WORKERS=8 or
// MESHSKIN_LOG_LEVEL=debug.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tamirms/meshskin"
	"github.com/tamirms/meshskin/internal/meshfile"
	"github.com/tamirms/meshskin/internal/synth"
)

// settings is the resolved tool configuration.
type settings struct {
	In           string  `mapstructure:"in"`
	Out          string  `mapstructure:"out"`
	Generate     string  `mapstructure:"generate"`
	Blank        float64 `mapstructure:"blank"`
	Seed         uint32  `mapstructure:"seed"`
	Verify       bool    `mapstructure:"verify"`
	Workers      int     `mapstructure:"workers"`
	MergePoints  bool    `mapstructure:"merge-points"`
	CellIds      bool    `mapstructure:"cell-ids"`
	PointIds     bool    `mapstructure:"point-ids"`
	KeepGhosts   bool    `mapstructure:"keep-ghost-interfaces"`
	Precision    string  `mapstructure:"precision"`
	IDWidth      string  `mapstructure:"id-width"`
	PoolChunk    int     `mapstructure:"pool-chunk"`
	LogLevel     string  `mapstructure:"log-level"`
	LogConsole   bool    `mapstructure:"log-console"`
	ConfigFile   string  `mapstructure:"config"`
	CellClipping string  `mapstructure:"cell-clip"`
}

func main() {
	s, err := loadSettings(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := newLogger(s)
	meshskin.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, s, log); err != nil {
		log.Error().Err(err).Msg("skin failed")
		os.Exit(1)
	}
}

func loadSettings(args []string) (*settings, error) {
	fs := pflag.NewFlagSet("skin", pflag.ContinueOnError)
	fs.String("in", "", "mesh snapshot to read")
	fs.String("out", "", "snapshot to write with -generate")
	fs.String("generate", "", "generate an NXxNYxNZ hexahedral block instead of reading -in")
	fs.Float64("blank", 0, "share of generated cells to hide")
	fs.Uint32("seed", 0x5eed, "blanking seed")
	fs.Bool("verify", true, "verify the snapshot checksum before extracting")
	fs.Int("workers", 0, "parallel workers (0 = GOMAXPROCS)")
	fs.Bool("merge-points", false, "compact output points")
	fs.Bool("cell-ids", false, "attach original cell ids")
	fs.Bool("point-ids", false, "attach original point ids")
	fs.Bool("keep-ghost-interfaces", false, "emit faces shared with duplicate ghost cells")
	fs.String("precision", "native", "output precision: native, float32 or float64")
	fs.String("id-width", "auto", "output id width: auto, 32 or 64")
	fs.Int("pool-chunk", 0, "face pool chunk size in words (0 = default)")
	fs.String("cell-clip", "", "keep only cells with ids in MIN:MAX")
	fs.String("log-level", "info", "log level")
	fs.Bool("log-console", true, "human readable log output")
	fs.String("config", "", "optional config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("MESHSKIN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if s.In == "" && s.Generate == "" {
		return nil, fmt.Errorf("one of -in or -generate is required")
	}
	return s, nil
}

func newLogger(s *settings) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if s.LogConsole {
		log = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05.000",
			FormatLevel: func(i interface{}) string {
				return strings.ToUpper(fmt.Sprintf("%-6s", i))
			},
		})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Str("tool", "skin").Logger()
}

func run(ctx context.Context, s *settings, log zerolog.Logger) error {
	if s.Generate != "" {
		return generate(s, log)
	}

	f, err := meshfile.Open(s.In)
	if err != nil {
		return err
	}
	defer f.Close()
	if s.Verify {
		start := time.Now()
		if err := f.Verify(); err != nil {
			return err
		}
		log.Info().Dur("elapsed", time.Since(start)).Int64("bytes", f.Size()).Msg("snapshot verified")
	}
	m, err := f.Mesh()
	if err != nil {
		return err
	}
	grid := synth.UnstructuredGrid(m)

	opts, err := options(s)
	if err != nil {
		return err
	}
	path, err := meshskin.Classify(grid, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	skin, err := meshskin.Extract(ctx, grid, opts...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	digest := skin.Digest()
	log.Info().
		Stringer("path", path).
		Int("inputCells", grid.NumberOfCells()).
		Int("inputPoints", grid.NumberOfPoints()).
		Int("verts", cellCount(skin.Verts)).
		Int("lines", cellCount(skin.Lines)).
		Int("polys", cellCount(skin.Polys)).
		Int("strips", cellCount(skin.Strips)).
		Int("points", skin.NumberOfPoints()).
		Dur("elapsed", elapsed).
		Str("digest", fmt.Sprintf("%016x%016x", digest.Hi, digest.Lo)).
		Msg("surface extracted")
	return nil
}

func cellCount(c meshskin.CellArray) int {
	if c == nil {
		return 0
	}
	return c.NumberOfCells()
}

func generate(s *settings, log zerolog.Logger) error {
	var b synth.Block
	if _, err := fmt.Sscanf(s.Generate, "%dx%dx%d", &b.NX, &b.NY, &b.NZ); err != nil {
		return fmt.Errorf("parse -generate %q: %w", s.Generate, err)
	}
	if s.Out == "" {
		return fmt.Errorf("-generate needs -out")
	}
	b.BlankRatio, b.Seed = s.Blank, s.Seed

	start := time.Now()
	if err := meshfile.Write(s.Out, b.Mesh()); err != nil {
		return err
	}
	log.Info().
		Str("out", s.Out).
		Int("cells", b.NumberOfCells()).
		Float64("blank", s.Blank).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot written")
	return nil
}

func options(s *settings) ([]meshskin.Option, error) {
	opts := []meshskin.Option{
		meshskin.WithWorkers(s.Workers),
		meshskin.WithMergePoints(s.MergePoints),
		meshskin.WithRemoveGhostInterfaces(!s.KeepGhosts),
	}
	if s.CellIds {
		opts = append(opts, meshskin.WithPassThroughCellIds(""))
	}
	if s.PointIds {
		opts = append(opts, meshskin.WithPassThroughPointIds(""))
	}
	if s.PoolChunk > 0 {
		opts = append(opts, meshskin.WithPoolChunkSize(s.PoolChunk))
	}
	if s.CellClipping != "" {
		var lo, hi int64
		if _, err := fmt.Sscanf(s.CellClipping, "%d:%d", &lo, &hi); err != nil {
			return nil, fmt.Errorf("parse -cell-clip %q: %w", s.CellClipping, err)
		}
		opts = append(opts, meshskin.WithCellClipping(lo, hi))
	}

	switch strings.ToLower(s.Precision) {
	case "", "native":
	case "float32":
		opts = append(opts, meshskin.WithOutputPrecision(meshskin.PrecisionFloat32))
	case "float64":
		opts = append(opts, meshskin.WithOutputPrecision(meshskin.PrecisionFloat64))
	default:
		return nil, fmt.Errorf("unknown precision %q", s.Precision)
	}
	switch strings.ToLower(s.IDWidth) {
	case "", "auto":
	case "32":
		opts = append(opts, meshskin.WithIDWidth(meshskin.IDWidth32))
	case "64":
		opts = append(opts, meshskin.WithIDWidth(meshskin.IDWidth64))
	default:
		return nil, fmt.Errorf("unknown id width %q", s.IDWidth)
	}
	return opts, nil
}
