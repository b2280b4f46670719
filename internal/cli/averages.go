package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/sleepq/dataset"
	"github.com/YuminosukeSato/sleepq/heuristic"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

func newAveragesCommand(a *app) *cobra.Command {
	var data, out string
	cmd := &cobra.Command{
		Use:   "averages",
		Short: "Compute the per-label average profile used by the rule-based predictor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := dataset.Load(data)
			if err != nil {
				return err
			}
			p := d.Averages()
			if err := p.Validate(); err != nil {
				return errors.Wrap(err, "dataset cannot seed the rule-based predictor")
			}
			if out == "" {
				out = a.cfg.ArtifactPaths().Averages
			}
			if err := writeProfile(out, p); err != nil {
				return err
			}
			rows := profileRows(p)
			return render(cmd.OutOrStdout(), a.cfg.Output, rows, func(w io.Writer) error {
				printComparison(w, rows)
				fmt.Fprintf(w, "Saved %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "sleep.csv", "historical data CSV")
	cmd.Flags().StringVar(&out, "out", "", "profile path (default from config artifacts.averages)")
	return cmd
}

func writeProfile(path string, p heuristic.AverageProfile) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return heuristic.WriteProfile(f, p)
}
