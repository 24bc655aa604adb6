// Command qualityctl computes time-in-state figures from a vehicle snapshot
// file without a running API or database.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/vehicle-quality/internal/duration"
	"github.com/ukydev/vehicle-quality/internal/models"
	"github.com/ukydev/vehicle-quality/internal/status"
)

// Snapshot is a vehicle with its timeline, as returned by GET /api/vehicles/{id}.
type Snapshot struct {
	Vehicle models.Vehicle         `json:"vehicle"`
	Events  []models.TimelineEvent `json:"events"`
}

type options struct {
	now    string
	locale string
	output string
}

func (o *options) formatter() (duration.Formatter, error) {
	switch o.locale {
	case "tr", "en":
		return duration.Formatter{Locale: duration.LocaleByName(o.locale)}, nil
	default:
		return duration.Formatter{}, fmt.Errorf("unsupported locale %q", o.locale)
	}
}

func (o *options) at() (time.Time, error) {
	if o.now == "" {
		return time.Now(), nil
	}
	t, err := duration.ParseTimestamp(o.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}
	return t, nil
}

func readSnapshot(path string) (*Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "qualityctl",
		Short:         "Inspect quality-line durations of a vehicle snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.now, "now", "", "reference instant (RFC 3339), defaults to the current time")
	root.PersistentFlags().StringVar(&opts.locale, "locale", "tr", "duration unit labels: tr or en")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(newElapsedCmd(opts), newTotalsCmd(opts), newBadgeCmd(opts))
	return root
}

func newElapsedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "elapsed <snapshot.json|->",
		Short: "Time spent in the current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.formatter()
			if err != nil {
				return err
			}
			at, err := opts.at()
			if err != nil {
				return err
			}
			s, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			e := duration.ResolveElapsed(&s.Vehicle, s.Events, at)
			text := f.Elapsed(e)
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"kind": e.Kind.String(), "elapsed": text})
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newTotalsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "totals <snapshot.json|->",
		Short: "Historical control, rework and quality time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.formatter()
			if err != nil {
				return err
			}
			s, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			acc := duration.Accumulate(&s.Vehicle, s.Events)
			if acc.Skipped > 0 {
				log.WithField("skipped", acc.Skipped).Warn("Skipped timeline events with malformed timestamps")
			}
			totals := f.Totals(acc)
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), totals)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "control: %s\n", totals.ControlTime)
			fmt.Fprintf(out, "rework:  %s\n", totals.ReworkTime)
			fmt.Fprintf(out, "quality: %s\n", totals.QualityTime)
			return nil
		},
	}
}

func newBadgeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "badge <status>",
		Short: "Display label, variant and icon of a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := status.Project(args[0])
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.Label, p.Variant, p.Icon)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("qualityctl failed")
		os.Exit(1)
	}
}
