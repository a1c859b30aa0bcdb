package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/phanxgames/cadence"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	eventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	stageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
)

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	var limit time.Duration
	cmd := &cobra.Command{
		Use:   "simulate <file>",
		Short: "Play a sequence file headlessly and print its lifecycle",
		Long: `Play a sequence file on a simulated frame clock and print every
lifecycle event with its timestamp.

Examples:
  cadence simulate intro.yaml
  cadence simulate loop.yaml --limit 5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig(v)
			if err != nil {
				return err
			}
			return simulate(cmd.OutOrStdout(), args[0], cfg, limit)
		},
	}
	cmd.Flags().DurationVar(&limit, "limit", 30*time.Second, "stop after this much simulated time")
	return cmd
}

func simulate(out io.Writer, path string, cfg cliConfig, limit time.Duration) error {
	file, err := cadence.LoadSequenceFile(path)
	if err != nil {
		return err
	}
	stub, handlers := newStubHandlers(file)
	seqCfg, err := file.Config(handlers)
	if err != nil {
		return err
	}
	seqCfg.Autoplay = false
	if seqCfg.PlaybackRate == 0 {
		seqCfg.PlaybackRate = cfg.Rate
	}

	frames := cadence.NewManualFrames()
	seq := cadence.NewSequence(seqCfg,
		cadence.WithFrames(frames),
		cadence.WithLogger(newLogger(cfg.LogLevel)),
		cadence.WithMotionPreference(cadence.StaticMotionPreference{ReducedMotion: cfg.ReducedMotion}),
		cadence.WithSelectorSource(emptySource{}),
	)

	for _, ev := range []cadence.EventType{
		cadence.EventStart, cadence.EventLoop, cadence.EventStageStart,
		cadence.EventStageComplete, cadence.EventComplete, cadence.EventCancel,
	} {
		seq.AddCallback(ev, func(e cadence.LifecycleEvent) {
			line := fmt.Sprintf("%8v  %-15s", frames.Now(), e.Type)
			if e.StageID != "" {
				fmt.Fprintln(out, stageStyle.Render(line+" "+e.StageID))
				return
			}
			fmt.Fprintln(out, eventStyle.Render(fmt.Sprintf("%s progress=%.2f iteration=%d", line, e.Progress, e.Iteration)))
		})
	}

	seq.Play()
	dt := time.Second / time.Duration(cfg.FPS)
	for frames.Now() < limit && seq.PlaybackState() == cadence.StatePlaying {
		frames.Step(dt)
	}
	if seq.PlaybackState() == cadence.StatePlaying {
		seq.Stop()
	}

	res := seq.Result()
	fmt.Fprintln(out, doneStyle.Render(fmt.Sprintf("%s after %v: %s, progress %.2f", res.ID, frames.Now(), res.PlaybackState, res.Progress)))
	for _, name := range stub.callbackNames() {
		fmt.Fprintf(out, "  callback %s: %d frames\n", name, stub.frames[name])
	}
	for _, name := range stub.fired {
		fmt.Fprintf(out, "  event %s fired\n", name)
	}
	return nil
}
