package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lazyservo/config"
	"lazyservo/protocol"
)

func newSetCmd(opts *options) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "set <oid> <value>",
		Short: "set a servo target in [0, 1]",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oid, err := parseOID(args[0])
			if err != nil {
				return err
			}
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}

			c, _, err := opts.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			if now {
				err = c.SetNow(oid, value)
			} else {
				err = c.Set(oid, value)
			}
			if err != nil {
				return err
			}

			// Surface a rejection instead of exiting silently
			select {
			case e := <-c.Errors():
				return fmt.Errorf("servo %d rejected command (code %d)", e.OID, e.Code)
			case <-time.After(opts.timeout / 4):
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "evaluate immediately instead of on the next check")
	return cmd
}

func newLimitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "limits <oid> <min_us> <max_us>",
		Short: "set the pulse widths for targets 0 and 1",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			oid, err := parseOID(args[0])
			if err != nil {
				return err
			}
			minUS, err := parsePulse(args[1])
			if err != nil {
				return err
			}
			maxUS, err := parsePulse(args[2])
			if err != nil {
				return err
			}
			if minUS > maxUS {
				return fmt.Errorf("min %d exceeds max %d", minUS, maxUS)
			}

			c, _, err := opts.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.SetLimits(oid, minUS, maxUS); err != nil {
				return err
			}
			s, err := c.QueryStatus(oid, opts.timeout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatStatus(s))
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status [oid...]",
		Short: "query servo status (default: every servo in the profile)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, profile, err := opts.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			oids, err := selectOIDs(args, profile.Servos)
			if err != nil {
				return err
			}
			for _, oid := range oids {
				s, err := c.QueryStatus(oid, opts.timeout)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatStatus(s))
			}
			return nil
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "watch <oid>",
		Short: "poll a servo and print every change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oid, err := parseOID(args[0])
			if err != nil {
				return err
			}

			c, _, err := opts.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			var last protocol.Status
			for i := 0; count == 0 || i < count; i++ {
				s, err := c.QueryStatus(oid, opts.timeout)
				if err != nil {
					return err
				}
				if i == 0 || s != last {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", time.Now().Format("15:04:05.000"), formatStatus(s))
					last = s
				}

				select {
				case <-ticker.C:
				case <-cmd.Context().Done():
					return nil
				}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "poll interval")
	cmd.Flags().IntVar(&count, "count", 0, "number of polls (0 = until interrupted)")
	return cmd
}

// selectOIDs parses explicit oids or falls back to the profile's servos
func selectOIDs(args []string, servos []config.Servo) ([]uint8, error) {
	var oids []uint8
	for _, arg := range args {
		oid, err := parseOID(arg)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	if len(oids) > 0 {
		return oids, nil
	}
	for _, s := range servos {
		oids = append(oids, s.OID)
	}
	return oids, nil
}
