package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/phanxgames/cadence"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const chartWidth = 48

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Width(20)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barStyles   = map[cadence.StageType]lipgloss.Style{
		cadence.StageStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		cadence.StageStagger:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		cadence.StageCallback: lipgloss.NewStyle().Foreground(lipgloss.Color("76")),
		cadence.StageEvent:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		cadence.StageGroup:    lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	}
)

func newTimelineCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <file>",
		Short: "Print the computed timeline of a sequence file",
		Long: `Build the timeline of a sequence file and print it as a chart.

Examples:
  cadence timeline intro.yaml
  cadence timeline intro.yaml --reduced-motion`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig(v)
			if err != nil {
				return err
			}
			seq, _, err := buildSequence(args[0], cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTimeline(seq))
			return nil
		},
	}
}

// buildSequence loads a file and constructs a sequence on a private frame
// pump, bound to stub handlers.
func buildSequence(path string, cfg cliConfig) (*cadence.Sequence, *stubHandlers, error) {
	file, err := cadence.LoadSequenceFile(path)
	if err != nil {
		return nil, nil, err
	}
	stub, handlers := newStubHandlers(file)
	seqCfg, err := file.Config(handlers)
	if err != nil {
		return nil, nil, err
	}
	seqCfg.Autoplay = false
	if seqCfg.PlaybackRate == 0 {
		seqCfg.PlaybackRate = cfg.Rate
	}
	seq := cadence.NewSequence(seqCfg,
		cadence.WithLogger(newLogger(cfg.LogLevel)),
		cadence.WithMotionPreference(cadence.StaticMotionPreference{ReducedMotion: cfg.ReducedMotion}),
		cadence.WithSelectorSource(emptySource{}),
	)
	return seq, stub, nil
}

// emptySource resolves every selector to nothing; the CLI has no tree.
type emptySource struct{}

func (emptySource) Select(string) []cadence.StyleTarget { return nil }

func renderTimeline(seq *cadence.Sequence) string {
	tl := seq.Timeline()
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %v  %d stages", seq.ID(), tl.TotalDuration, len(tl.Order))))
	b.WriteString("\n")

	res := seq.Result()
	for i, tm := range tl.Timings {
		st := tl.Stages[i]
		label := tm.ID
		if res.Stages[i].IsReduced {
			label += "*"
		}
		style, ok := barStyles[st.Type]
		if !ok {
			style = mutedStyle
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(mutedStyle.Render("|"))
		b.WriteString(style.Render(bar(tm.StartTime, tm.EndTime, tl.TotalDuration)))
		b.WriteString(mutedStyle.Render("| "))
		b.WriteString(timeStyle.Render(fmt.Sprintf("%v → %v  %s", tm.StartTime, tm.EndTime, st.Type)))
		b.WriteString("\n")
	}
	if res.ReducedMotion {
		b.WriteString(mutedStyle.Render("* reduced-motion alternative"))
		b.WriteString("\n")
	}
	return b.String()
}

// bar draws the [start, end) window of a stage on a fixed-width track.
func bar(start, end, total time.Duration) string {
	cells := make([]rune, chartWidth)
	for i := range cells {
		cells[i] = ' '
	}
	if total <= 0 {
		cells[0] = '▏'
		return string(cells)
	}
	from := int(float64(start) / float64(total) * chartWidth)
	to := int(float64(end) / float64(total) * chartWidth)
	if from >= chartWidth {
		from = chartWidth - 1
	}
	if to > chartWidth {
		to = chartWidth
	}
	if to <= from {
		cells[from] = '▏'
		return string(cells)
	}
	for i := from; i < to; i++ {
		cells[i] = '█'
	}
	return string(cells)
}
