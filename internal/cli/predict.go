package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/sleepq/cascade"
	"github.com/YuminosukeSato/sleepq/heuristic"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/sleep"
)

type predictFlags struct {
	age      int
	gender   string
	steps    int
	calories int
	activity string
	diet     string
}

// ComparisonRow is one line of the comparison with the population averages.
type ComparisonRow struct {
	Group          string  `json:"group" yaml:"group"`
	Age            float64 `json:"age" yaml:"age"`
	DailySteps     float64 `json:"daily_steps" yaml:"daily_steps"`
	CaloriesBurned float64 `json:"calories_burned" yaml:"calories_burned"`
}

// PredictResult is the rendered output of the predict command.
type PredictResult struct {
	RequestID  string             `json:"request_id" yaml:"request_id"`
	Input      sleep.FeatureInput `json:"input" yaml:"input"`
	Outcome    cascade.Outcome    `json:"outcome" yaml:"outcome"`
	Comparison []ComparisonRow    `json:"comparison" yaml:"comparison"`
}

func newPredictCommand(a *app) *cobra.Command {
	var f predictFlags
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict sleep quality for one person",
		Example: `  sleepq predict --age 30 --gender Male --steps 10000 --calories 3000 --activity High --diet Healthy
  sleepq predict --age 45 --gender Female --steps 4000 --calories 1800 --activity Low --diet Poor -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			return a.runPredict(cmd.OutOrStdout(), in)
		},
	}

	cmd.Flags().IntVar(&f.age, "age", 0, "age in years (10-100)")
	cmd.Flags().StringVar(&f.gender, "gender", "", "Male or Female")
	cmd.Flags().IntVar(&f.steps, "steps", 0, "daily steps")
	cmd.Flags().IntVar(&f.calories, "calories", 0, "calories burned per day")
	cmd.Flags().StringVar(&f.activity, "activity", "", "physical activity level (Low, Moderate, High)")
	cmd.Flags().StringVar(&f.diet, "diet", "", "dietary habits (Poor, Average, Healthy)")
	for _, name := range []string{"age", "gender", "steps", "calories", "activity", "diet"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (f predictFlags) input() (sleep.FeatureInput, error) {
	gender, err := sleep.ParseGender(f.gender)
	if err != nil {
		return sleep.FeatureInput{}, err
	}
	activity, err := sleep.ParseActivityLevel(f.activity)
	if err != nil {
		return sleep.FeatureInput{}, err
	}
	diet, err := sleep.ParseDietQuality(f.diet)
	if err != nil {
		return sleep.FeatureInput{}, err
	}
	return sleep.FeatureInput{
		Age:            f.age,
		Gender:         gender,
		DailySteps:     f.steps,
		CaloriesBurned: f.calories,
		ActivityLevel:  activity,
		DietaryHabits:  diet,
	}, nil
}

func (a *app) runPredict(w io.Writer, in sleep.FeatureInput) error {
	id := uuid.NewString()
	logger := log.GetLogger().With(log.RequestIDKey, id)

	paths := a.cfg.ArtifactPaths()
	averages := heuristic.LoadProfileOrDefault(paths.Averages, logger)
	c, err := cascade.NewFromProfile(a.cfg.Profile(), paths,
		cascade.WithLogger(logger),
		cascade.WithAverages(averages),
	)
	if err != nil {
		return err
	}
	out, err := c.PredictWithFallback(in)
	if err != nil {
		return err
	}

	res := PredictResult{
		RequestID:  id,
		Input:      in,
		Outcome:    out,
		Comparison: comparison(averages, in),
	}
	return render(w, a.cfg.Output, res, func(w io.Writer) error {
		printOutcome(w, res)
		return nil
	})
}

func profileRows(p heuristic.AverageProfile) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(p)+1)
	for _, l := range p.Labels() {
		ref := p[l]
		rows = append(rows, ComparisonRow{Group: string(l), Age: ref.Age, DailySteps: ref.DailySteps, CaloriesBurned: ref.CaloriesBurned})
	}
	return rows
}

func comparison(p heuristic.AverageProfile, in sleep.FeatureInput) []ComparisonRow {
	return append(profileRows(p), ComparisonRow{
		Group:          "Your Input",
		Age:            float64(in.Age),
		DailySteps:     float64(in.DailySteps),
		CaloriesBurned: float64(in.CaloriesBurned),
	})
}

func printOutcome(w io.Writer, res PredictResult) {
	out := res.Outcome
	for _, n := range out.Notices {
		fmt.Fprintf(w, "Note: %s\n", n.Message)
	}
	if len(out.Notices) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Predicted sleep quality: %s\n", out.Label)
	if out.Coarse != "" {
		fmt.Fprintf(w, "Overall: %s\n", out.Coarse)
	}
	fmt.Fprintf(w, "Method: %s\n", out.Source)
	if out.Confidence != nil {
		fmt.Fprintf(w, "Confidence: %.1f%%\n", out.ConfidencePercent)
		labels := make([]sleep.Label, 0, len(out.Confidence))
		for l := range out.Confidence {
			labels = append(labels, l)
		}
		sort.Slice(labels, func(i, j int) bool {
			pi, pj := out.Confidence[labels[i]], out.Confidence[labels[j]]
			if pi != pj {
				return pi > pj
			}
			return labels[i].Rank() > labels[j].Rank()
		})
		for _, l := range labels {
			fmt.Fprintf(w, "  %-10s %5.1f%%\n", l, out.Confidence.Percent(l))
		}
	}

	fmt.Fprintln(w, "\nSuggestions:")
	for _, line := range out.Suggestions.Lines() {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	if len(out.Recommendations) > 0 {
		fmt.Fprintln(w, "\nGeneral recommendations:")
		for _, line := range out.Recommendations {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}

	fmt.Fprintln(w, "\nComparison with averages:")
	printComparison(w, res.Comparison)
}

func printComparison(w io.Writer, rows []ComparisonRow) {
	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{r.Group, formatNumber(r.Age), formatNumber(r.DailySteps), formatNumber(r.CaloriesBurned)}
	}
	printTable(w, []string{"Sleep Quality", "Age", "Daily Steps", "Calories Burned"}, table)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
