package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pearll/pearll/logging"
)

func runPlot(args []string) {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	runDir := fs.String("run", "", "run directory produced by 'pearll demo'")
	tag := fs.String("tag", "rollout/episode_reward", "metric tag to plot")
	out := fs.String("out", "reward.png", "output PNG path")
	fs.Parse(args)

	if *runDir == "" {
		fmt.Fprintln(os.Stderr, "plot: -run is required")
		fs.Usage()
		os.Exit(1)
	}

	if err := renderSeries(*runDir, *tag, *out); err != nil {
		fmt.Fprintf(os.Stderr, "plot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

// renderSeries reads a run's event log and plots one tag as a line chart.
func renderSeries(runDir, tag, out string) error {
	events, err := logging.ReadEvents(runDir)
	if err != nil {
		return err
	}

	var pts plotter.XYs
	for _, ev := range events {
		if ev.Tag != tag {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(ev.Step), Y: ev.Value})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no events with tag %q in %s", tag, runDir)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

	p := plot.New()
	p.Title.Text = tag
	p.X.Label.Text = "step"
	p.Y.Label.Text = "value"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line, plotter.NewGrid())

	return p.Save(8*vg.Inch, 4*vg.Inch, out)
}
