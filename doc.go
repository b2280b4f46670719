// Package sleepq predicts a sleep-quality label from a person's age, gender,
// daily steps, calories burned, activity level and dietary habits.
//
// Predictions are resolved by a fallback cascade. The most capable predictor
// whose artifacts load and whose inference succeeds answers; every skipped
// tier is reported as a notice so callers can tell the user a simpler method
// was used.
//
// # Packages
//
//   - sleep: feature tuple, labels and confidence distributions
//   - preprocessing: one-hot and label encoders, standard scaler
//   - heuristic: rule-based, coarse and mock scoring
//   - sklearn/linear_model, neural: the trained classifiers
//   - predictor: the Predictor interface, artifact loaders and lazy loading
//   - cascade: ordered tiers and degradation notices
//   - suggestion: advice per label
//   - dataset, training, metrics: the offline jobs producing artifacts
//
// # Quick Start
//
//	c, err := cascade.NewFromProfile(cascade.ProfileFull, cascade.Artifacts{
//	    Linear:   "sleep_model.json",
//	    Neural:   "sleep_nn_model.json",
//	    Encoders: "encoders.json",
//	    Averages: "sleep_quality_avg_values.csv",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := c.PredictWithFallback(sleep.FeatureInput{
//	    Age: 30, Gender: sleep.Male, DailySteps: 10000, CaloriesBurned: 3000,
//	    ActivityLevel: sleep.ActivityHigh, DietaryHabits: sleep.DietHealthy,
//	})
//	if err != nil {
//	    log.Fatal(err) // InvalidInput
//	}
//	fmt.Println(out.Label, out.Source, out.Suggestions.Message)
//
// The sleepq command (cmd/sleepq) wraps the same cascade for the terminal and
// HTTP, and runs the training jobs.
package sleepq
