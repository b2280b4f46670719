package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/sleepq/dataset"
	"github.com/YuminosukeSato/sleepq/neural"
	"github.com/YuminosukeSato/sleepq/sklearn/linear_model"
	"github.com/YuminosukeSato/sleepq/training"
)

type trainFlags struct {
	data         string
	out          string
	testFraction float64
	seed         int64
}

func (f *trainFlags) register(cmd *cobra.Command, outHelp string) {
	cmd.Flags().StringVar(&f.data, "data", "sleep.csv", "training data CSV")
	cmd.Flags().StringVar(&f.out, "out", "", outHelp)
	cmd.Flags().Float64Var(&f.testFraction, "test-size", training.DefaultTestFraction, "held-out fraction")
	cmd.Flags().Int64Var(&f.seed, "seed", training.DefaultSeed, "random seed")
}

func newTrainCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train model artifacts from historical data",
	}
	cmd.AddCommand(newTrainLinearCommand(a), newTrainNeuralCommand(a))
	return cmd
}

func newTrainLinearCommand(a *app) *cobra.Command {
	var (
		f       trainFlags
		maxIter int
		c       float64
	)
	cmd := &cobra.Command{
		Use:   "linear",
		Short: "Train the logistic regression artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := dataset.Load(f.data)
			if err != nil {
				return err
			}
			res, err := training.TrainLinear(d,
				training.WithTestFraction(f.testFraction),
				training.WithSeed(f.seed),
				training.WithLogisticOptions(linear_model.WithLRMaxIter(maxIter), linear_model.WithLRC(c)),
			)
			if err != nil {
				return err
			}
			out := f.out
			if out == "" {
				out = a.cfg.ArtifactPaths().Linear
			}
			if err := training.SaveLinear(res.Weights, out); err != nil {
				return err
			}
			return a.printReport(cmd.OutOrStdout(), res.Report, out)
		},
	}
	f.register(cmd, "artifact path (default from config artifacts.linear)")
	cmd.Flags().IntVar(&maxIter, "max-iter", 500, "maximum gradient steps")
	cmd.Flags().Float64Var(&c, "c", 1.0, "inverse regularisation strength")
	return cmd
}

func newTrainNeuralCommand(a *app) *cobra.Command {
	var (
		f            trainFlags
		encodersOut  string
		epochs       int
		batchSize    int
		learningRate float64
		plotPath     string
	)
	cmd := &cobra.Command{
		Use:   "neural",
		Short: "Train the neural network artifact and its encoder map",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := dataset.Load(f.data)
			if err != nil {
				return err
			}
			res, err := training.TrainNeural(d,
				training.WithTestFraction(f.testFraction),
				training.WithSeed(f.seed),
				training.WithNeuralOptions(
					neural.WithEpochs(epochs),
					neural.WithBatchSize(batchSize),
					neural.WithLearningRate(learningRate),
				),
			)
			if err != nil {
				return err
			}

			paths := a.cfg.ArtifactPaths()
			out, enc := f.out, encodersOut
			if out == "" {
				out = paths.Neural
			}
			if enc == "" {
				enc = paths.Encoders
			}
			if err := training.SaveNeural(res, out, enc); err != nil {
				return err
			}
			if plotPath != "" {
				if err := training.PlotLoss(res.History, plotPath); err != nil {
					return err
				}
			}
			return a.printReport(cmd.OutOrStdout(), res.Report, out, enc)
		},
	}
	f.register(cmd, "weights artifact path (default from config artifacts.neural)")
	cmd.Flags().StringVar(&encodersOut, "encoders-out", "", "encoder map path (default from config artifacts.encoders)")
	cmd.Flags().IntVar(&epochs, "epochs", 100, "training epochs")
	cmd.Flags().IntVar(&batchSize, "batch-size", 32, "mini-batch size")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0.001, "Adam learning rate")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write the loss curve to this image file")
	return cmd
}

// TrainResult is the rendered output of the train commands.
type TrainResult struct {
	Report    *training.Report `json:"report" yaml:"report"`
	Artifacts []string         `json:"artifacts" yaml:"artifacts"`
}

func (a *app) printReport(w io.Writer, r *training.Report, artifacts ...string) error {
	res := TrainResult{Report: r, Artifacts: artifacts}
	return render(w, a.cfg.Output, res, func(w io.Writer) error {
		fmt.Fprintf(w, "Accuracy: %.4f (%d held-out samples)\n", r.Accuracy, r.Samples)

		headers := []string{"Class", "Precision", "Recall", "F1", "Support"}
		rows := make([][]string, 0, len(r.Classes))
		for _, c := range r.Classes {
			cr := r.PerClass[c]
			rows = append(rows, []string{
				string(c),
				fmt.Sprintf("%.3f", cr.Precision),
				fmt.Sprintf("%.3f", cr.Recall),
				fmt.Sprintf("%.3f", cr.F1),
				fmt.Sprint(cr.Support),
			})
		}
		printTable(w, headers, rows)
		for _, p := range artifacts {
			fmt.Fprintf(w, "Saved %s\n", p)
		}
		return nil
	})
}
