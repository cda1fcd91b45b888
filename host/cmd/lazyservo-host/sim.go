package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"lazyservo/core"
	"lazyservo/sim"
)

// demoScript exercises wake, a jitter below the default threshold, a
// forced move and the doze timeout
var demoScript = sim.Script{
	{AtUS: 300000, Target: 0.2},
	{AtUS: 600000, Target: 0.2005},
	{AtUS: 900000, Target: 0.8, Now: true},
	{AtUS: 4000000, Target: 0.1},
}

type simOptions struct {
	script      string
	oid         uint8
	duration    time.Duration
	poll        time.Duration
	threshold   float32
	check       time.Duration
	dozing      time.Duration
	height      int
	width       int
	transitions bool
}

func newSimCmd(opts *options) *cobra.Command {
	so := &simOptions{}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "run a scripted simulation and plot the pulse output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := so.servoConfig(cmd, opts)
			if err != nil {
				return err
			}
			script, err := so.loadScript()
			if err != nil {
				return err
			}
			return runSim(cmd.OutOrStdout(), cfg, script, so)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&so.script, "script", "", "script file (yaml list of {at_us, target, now})")
	flags.Uint8Var(&so.oid, "oid", 0, "take servo parameters from this profile entry")
	flags.DurationVar(&so.duration, "duration", 0, "simulated time (default: script end + dozing timeout + 1s)")
	flags.DurationVar(&so.poll, "poll", time.Millisecond, "Update interval")
	flags.Float32Var(&so.threshold, "threshold", 0, "override laziness threshold")
	flags.DurationVar(&so.check, "check", 0, "override check interval")
	flags.DurationVar(&so.dozing, "dozing", 0, "override dozing timeout")
	flags.IntVar(&so.height, "height", 10, "plot height")
	flags.IntVar(&so.width, "width", 80, "plot width")
	flags.BoolVar(&so.transitions, "transitions", false, "dump the transition ring after the run")
	return cmd
}

// servoConfig picks the profile entry and applies explicit overrides
func (so *simOptions) servoConfig(cmd *cobra.Command, opts *options) (core.Config, error) {
	profile, err := opts.loadProfile()
	if err != nil {
		return core.Config{}, err
	}

	cfg := core.DefaultConfig()
	cfg.OID = so.oid
	if s, ok := profile.Servo(so.oid); ok {
		cfg = s.CoreConfig()
	} else if cmd.Flags().Changed("oid") {
		return core.Config{}, fmt.Errorf("servo %d not in profile", so.oid)
	}

	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = so.threshold
	}
	if cmd.Flags().Changed("check") {
		cfg.CheckIntervalUS = uint32(so.check.Microseconds())
	}
	if cmd.Flags().Changed("dozing") {
		cfg.DozingTimeoutUS = uint32(so.dozing.Microseconds())
	}
	return cfg, nil
}

func (so *simOptions) loadScript() (sim.Script, error) {
	if so.script == "" {
		return demoScript, nil
	}
	data, err := os.ReadFile(so.script)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return sim.ParseScript(data)
}

func runSim(w io.Writer, cfg core.Config, script sim.Script, so *simOptions) error {
	duration := uint64(so.duration.Microseconds())
	if duration == 0 {
		duration = script.End() + uint64(cfg.DozingTimeoutUS) + 1000000
	}
	poll := uint64(so.poll.Microseconds())
	if poll == 0 {
		return fmt.Errorf("poll interval must be at least 1us")
	}

	core.ClearTransitionRing()
	bench := sim.NewBench(cfg, poll)
	trace := bench.Run(script, duration)
	if len(trace.Samples) == 0 {
		return fmt.Errorf("simulation produced no samples")
	}

	graph := asciigraph.Plot(trace.Pulses(),
		asciigraph.Height(so.height),
		asciigraph.Width(so.width),
		asciigraph.Caption(fmt.Sprintf("pulse width (us) over %s, 0 = detached", time.Duration(duration)*time.Microsecond)),
	)
	fmt.Fprintln(w, graph)
	fmt.Fprintln(w)

	attached := float64(trace.AttachedTime()) / float64(duration) * 100
	fmt.Fprintf(w, "writes=%d wakeups=%d sleeps=%d faults=%d attached=%.1f%%\n",
		trace.Stats.Writes, trace.Stats.Wakeups, trace.Stats.Sleeps, trace.Stats.Faults, attached)

	if so.transitions {
		fmt.Fprintln(w)
		core.SetDebugWriter(func(s string) { fmt.Fprintln(w, s) })
		core.DumpTransitionRing()
		core.SetDebugWriter(func(string) {})
	}
	return nil
}
