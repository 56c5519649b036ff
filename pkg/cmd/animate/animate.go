package animate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/cache"
	"f1trackrenderer/pkg/cmd/common"
	"f1trackrenderer/pkg/config"
	"f1trackrenderer/pkg/frames"
	"f1trackrenderer/pkg/helper"
	"f1trackrenderer/pkg/layout"
	"f1trackrenderer/pkg/model"
	"f1trackrenderer/pkg/render"
	"f1trackrenderer/pkg/telemetry"
)

const driverPrompt = "Enter the driver codes (comma separated): "

var animateCfg config.Animate

// Resolver returns loaded sessions. cache.Gateway implements it.
type Resolver interface {
	Resolve(ctx context.Context, year int, race string, st model.SessionType) (*model.Session, error)
}

func NewAnimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animate",
		Short: "renders the X/Y traces of the selected drivers into an animated GIF",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, store, err := common.OpenGateway()
			if err != nil {
				return err
			}
			defer store.Close()
			return Run(cmd.Context(), animateCfg, gw, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&animateCfg.Year, "year", 2023, "season")
	cmd.Flags().StringVar(&animateCfg.Race, "race", "Italian Grand Prix",
		"race name, matched case-insensitively against the event names")
	cmd.Flags().StringVar(&animateCfg.SessionType, "session", "R", "session type (FP1, FP2, FP3, Q, R)")
	cmd.Flags().StringVar(&animateCfg.Drivers, "drivers", "",
		"comma separated driver codes (prompted when empty)")
	cmd.Flags().IntVar(&animateCfg.Laps, "laps", 5, "number of laps per driver")
	cmd.Flags().IntVar(&animateCfg.Stride, "stride", 1, "keep every n-th sample")
	cmd.Flags().Float64Var(&animateCfg.Padding, "padding", layout.DefaultPadding,
		"padding around the traces in track units")
	cmd.Flags().DurationVar(&animateCfg.Delay, "delay", 10*time.Millisecond, "delay between frames")
	cmd.Flags().IntVar(&animateCfg.Width, "width", 800, "image width in pixels")
	cmd.Flags().IntVar(&animateCfg.Height, "height", 600, "image height in pixels")
	cmd.Flags().StringVar(&animateCfg.Output, "output", "animation.gif",
		"output GIF file, the track outline is written next to it as SVG")
	return cmd
}

func readDrivers(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, driverPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

// Run loads the session, builds the scene and writes the animation.
//
//nolint:funlen // one pipeline
func Run(ctx context.Context, cfg config.Animate, resolver Resolver, in io.Reader, out io.Writer) error {
	logger := log.Default().Named("animate")
	st, err := model.ParseSessionType(cfg.SessionType)
	if err != nil {
		return err
	}
	raw := cfg.Drivers
	if strings.TrimSpace(raw) == "" {
		if raw, err = readDrivers(in, out); err != nil {
			return err
		}
	}
	drivers := helper.ParseDriverCodes(raw)
	if len(drivers) == 0 {
		return errors.New("no driver codes given")
	}

	session, err := resolver.Resolve(ctx, cfg.Year, cfg.Race, st)
	if errors.Is(err, cache.ErrRaceNotFound) {
		logger.Warn("race not found", log.String("race", cfg.Race), log.Int("year", cfg.Year))
		fmt.Fprintf(out, "Race %q not found in %d.\n", cfg.Race, cfg.Year)
		return nil
	}
	if err != nil {
		return err
	}

	set, warnings := telemetry.NewFetcher(logger).DriverLaps(session, drivers, cfg.Laps)
	for _, w := range warnings {
		fmt.Fprintln(out, w.Message)
	}

	scene, skipped, err := render.NewScene(set, render.SceneOptions{
		Layout:  layout.Options{Mode: layout.ModeRaw, Stride: cfg.Stride},
		Policy:  frames.PolicyStop,
		Padding: cfg.Padding,
		Delay:   cfg.Delay,
		Style:   render.DarkStyle,
		Colors:  render.RandomColors(rand.New(rand.NewSource(time.Now().UnixNano()))), //nolint:gosec // colors only
	})
	for _, sk := range skipped {
		fmt.Fprintf(out, "Skipping %s: %v\n", sk.Driver, sk.Err)
	}
	if err != nil {
		return err
	}

	printSummary(out, session, scene, set, cfg.Laps)

	if err := writeGIF(cfg, scene, logger); err != nil {
		return err
	}
	svgPath := outlinePath(cfg.Output)
	if err := writeOutline(svgPath, cfg, scene); err != nil {
		return err
	}

	info, err := os.Stat(cfg.Output)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s (%s, %d frames) and %s\n",
		cfg.Output, humanize.Bytes(uint64(info.Size())), scene.Len(), svgPath)
	return nil
}

func printSummary(out io.Writer, session *model.Session, scene *render.Scene, set model.TelemetrySet, maxLaps int) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(session.String())
	t.AppendHeader(table.Row{"Driver", "Laps", "Samples", "Best lap"})
	for _, track := range scene.Tracks {
		dt, _ := set.Get(track.Driver)
		laps := session.PickDriver(track.Driver)
		if maxLaps > 0 && len(laps) > maxLaps {
			laps = laps[:maxLaps]
		}
		var best time.Duration
		for _, l := range laps {
			if l.Duration > 0 && (best == 0 || l.Duration < best) {
				best = l.Duration
			}
		}
		t.AppendRow(table.Row{track.Driver, len(dt.Laps), dt.SampleCount(), helper.LapTime(best)})
	}
	t.AppendFooter(table.Row{"Frames", "", scene.Len(), ""})
	t.Render()
}

func writeGIF(cfg config.Animate, scene *render.Scene, logger *log.Logger) error {
	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	defer f.Close()

	step := scene.Len() / 10
	gw := render.GIFWriter{
		Width:  cfg.Width,
		Height: cfg.Height,
		Progress: func(done, total int) {
			if step > 0 && done%step == 0 {
				logger.Debug("encoding frames", log.Int("done", done), log.Int("total", total))
			}
		},
	}
	if err := gw.Write(f, scene); err != nil {
		return errors.Wrapf(err, "write %s", cfg.Output)
	}
	return f.Close()
}

func outlinePath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".svg"
}

func writeOutline(path string, cfg config.Animate, scene *render.Scene) error {
	outline := *scene
	outline.Style = render.LightStyle
	c := render.NewSVGCanvas(cfg.Width, cfg.Height, scene.Bounds)
	outline.DrawBackground(c)
	return errors.Wrapf(c.Save(path), "write %s", path)
}
