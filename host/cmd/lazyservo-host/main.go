package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lazyservo/config"
	"lazyservo/core"
	"lazyservo/host/link"
	"lazyservo/protocol"
)

// options shared by all subcommands
type options struct {
	profile string
	device  string
	baud    int
	timeout time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "lazyservo-host",
		Short:         "control and simulate lazy servo controllers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.profile, "config", "", "profile file (yaml)")
	flags.StringVar(&opts.device, "device", "", "serial device path (overrides profile)")
	flags.IntVar(&opts.baud, "baud", 0, "baud rate (overrides profile, ignored for USB CDC)")
	flags.DurationVar(&opts.timeout, "timeout", time.Second, "response timeout")

	rootCmd.AddCommand(
		newSetCmd(opts),
		newLimitsCmd(opts),
		newStatusCmd(opts),
		newWatchCmd(opts),
		newSimCmd(opts),
	)
	return rootCmd
}

// loadProfile reads the profile and applies the command line overrides
func (o *options) loadProfile() (*config.Profile, error) {
	p := config.Default()
	if o.profile != "" {
		var err error
		if p, err = config.Load(o.profile); err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid profile %s: %w", o.profile, err)
		}
	}
	if o.device != "" {
		p.Serial.Device = o.device
	}
	if o.baud != 0 {
		p.Serial.Baud = o.baud
	}
	return p, nil
}

// dial opens the link described by the profile
func (o *options) dial() (*link.Client, *config.Profile, error) {
	p, err := o.loadProfile()
	if err != nil {
		return nil, nil, err
	}
	c, err := link.Dial(&p.Serial)
	if err != nil {
		return nil, nil, err
	}
	return c, p, nil
}

func parseOID(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid oid %q: %w", s, err)
	}
	return uint8(v), nil
}

func parseValue(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("value %v outside [0, 1]", v)
	}
	return float32(v), nil
}

func parsePulse(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid pulse width %q: %w", s, err)
	}
	return uint16(v), nil
}

// formatStatus renders one servo_status response on a single line
func formatStatus(s protocol.Status) string {
	written := "-"
	if s.Written >= 0 {
		written = strconv.FormatFloat(float64(s.Written), 'f', 3, 32)
	}
	return fmt.Sprintf("oid=%d state=%s attached=%t target=%.3f written=%s pulse=%dus writes=%d wakeups=%d sleeps=%d faults=%d",
		s.OID, core.State(s.State), s.Attached, s.Target, written, s.PulseUS,
		s.Writes, s.Wakeups, s.Sleeps, s.Faults)
}
