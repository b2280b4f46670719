package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/preprocessing"
	"github.com/YuminosukeSato/sleepq/sleep"
)

const sample = `Person ID,Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality
1,30,Male,10000,3000,High,Healthy,Excellent
2,40,Female,9800,2960,High,Healthy,Excellent
3,25,Male,5000,1800,Low,Poor,Fair
4,35,Female,8000,2600,Moderate,Average,Good
5,50,female,3000,1500,low,poor,Poor
`

func TestRead(t *testing.T) {
	d, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, 5, d.Len())

	assert.Equal(t, Record{
		Input: sleep.FeatureInput{
			Age: 30, Gender: sleep.Male, DailySteps: 10000, CaloriesBurned: 3000,
			ActivityLevel: sleep.ActivityHigh, DietaryHabits: sleep.DietHealthy,
		},
		Quality: sleep.Excellent,
	}, d.Records[0])
	assert.Equal(t, sleep.Female, d.Records[4].Input.Gender)
	assert.Equal(t, sleep.ActivityLow, d.Records[4].Input.ActivityLevel)
	assert.Equal(t, []sleep.Label{sleep.Excellent, sleep.Excellent, sleep.Fair, sleep.Good, sleep.Poor}, d.Qualities())
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"header only", "Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality\n"},
		{"missing column", "Age,Gender\n1,Male\n"},
		{"bad number", "Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality\nx,Male,1,1,Low,Poor,Poor\n"},
		{"negative", "Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality\n30,Male,-1,1,Low,Poor,Poor\n"},
		{"bad category", "Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality\n30,Other,1,1,Low,Poor,Poor\n"},
		{"bad label", "Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality\n30,Male,1,1,Low,Poor,Great\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Read(strings.NewReader(""))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestSplit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "%d,Male,%d,2000,Low,Poor,Poor\n", 20+i, i)
	}
	d, err := Read(strings.NewReader(sb.String()))
	require.NoError(t, err)

	train, test, err := d.Split(0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 40, train.Len())
	assert.Equal(t, 10, test.Len())

	seen := make(map[int]bool)
	for _, r := range append(append([]Record(nil), train.Records...), test.Records...) {
		assert.False(t, seen[r.Input.DailySteps])
		seen[r.Input.DailySteps] = true
	}
	assert.Len(t, seen, 50)

	train2, test2, err := d.Split(0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train.Records, train2.Records)
	assert.Equal(t, test.Records, test2.Records)

	_, _, err = d.Split(0, 42)
	assert.Error(t, err)
	_, _, err = (&Dataset{Records: d.Records[:1]}).Split(0.2, 42)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	d, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	enc, err := preprocessing.NewOneHotEncoder(preprocessing.DefaultCategories())
	require.NoError(t, err)

	X := d.Encode(enc)
	r, c := X.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 8, c)
	assert.Equal(t, enc.Encode(d.Records[3].Input), X.RawRowView(3))
}

func TestAverages(t *testing.T) {
	d, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	p := d.Averages()
	require.Len(t, p, 4)
	ex := p[sleep.Excellent]
	assert.InDelta(t, 35, ex.Age, 1e-12)
	assert.InDelta(t, 9900, ex.DailySteps, 1e-12)
	assert.InDelta(t, 2980, ex.CaloriesBurned, 1e-12)
	assert.NoError(t, p.Validate())
}
