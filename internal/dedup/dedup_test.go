package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/normalize"
)

func job(title, company, location string) model.NormalizedJob {
	return model.NormalizedJob{
		ID:       normalize.JobID(title, company, location),
		Title:    title,
		Company:  company,
		Location: location,
	}
}

func titles(jobs []model.NormalizedJob) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Title
	}
	return out
}

func TestDedup_SeniorSrScenario(t *testing.T) {
	require.Greater(t, Ratio("Senior SWE Acme", "Sr. SWE Acme"), DefaultThreshold)

	d := New(0)
	got := d.Dedup([]model.NormalizedJob{
		job("Senior SWE", "Acme", "Boston, MA"),
		job("Sr. SWE", "Acme", "Boston, MA"),
	}, nil, nil)

	assert.Equal(t, []string{"Senior SWE"}, titles(got))
}

func TestDedup_ExistingIDsNeverInOutput(t *testing.T) {
	a := job("Backend Engineer", "Acme", "Remote")
	b := job("Data Scientist", "Globex", "NYC")
	c := job("iOS Developer", "Initech", "Austin")

	existing := map[string]struct{}{b.ID: {}}
	got := New(0).Dedup([]model.NormalizedJob{a, b, c}, existing, nil)

	assert.Equal(t, []string{"Backend Engineer", "iOS Developer"}, titles(got))
	for _, j := range got {
		_, known := existing[j.ID]
		assert.False(t, known)
	}
}

func TestDedup_SameIDWithinBatch(t *testing.T) {
	a := job("Backend Engineer", "Acme", "Remote")
	got := New(0).Dedup([]model.NormalizedJob{a, a, a}, nil, nil)
	assert.Len(t, got, 1)
}

func TestDedup_FuzzyAgainstExistingPairs(t *testing.T) {
	got := New(0).Dedup([]model.NormalizedJob{
		job("Senior Backend Engineer", "Acme Inc", "Remote"),
		job("Frontend Engineer", "Acme Inc", "Remote"),
	}, nil, []string{"Sr. Backend Engineer Acme Inc"})

	assert.Equal(t, []string{"Frontend Engineer"}, titles(got))
}

func TestDedup_DistinctJobsKeptInOrder(t *testing.T) {
	in := []model.NormalizedJob{
		job("Machine Learning Engineer", "Hooli", "Palo Alto"),
		job("Product Designer", "Pied Piper", "Remote"),
		job("Site Reliability Engineer", "Umbrella", "Raleigh"),
	}
	got := New(0).Dedup(in, map[string]struct{}{}, []string{"Accountant Vandelay Industries"})
	assert.Equal(t, titles(in), titles(got))
}

func TestDedup_Idempotent(t *testing.T) {
	in := []model.NormalizedJob{
		job("Senior SWE", "Acme", "Boston"),
		job("Sr. SWE", "Acme", "Boston"),
		job("Data Engineer", "Acme", "Boston"),
		job("Data Engineer", "Acme", "Boston"),
		job("Data Engineers", "Acme", "Boston"),
		job("QA Engineer", "Globex", "Remote"),
	}
	d := New(0)
	once := d.Dedup(in, nil, nil)
	twice := d.Dedup(once, nil, nil)
	assert.Equal(t, once, twice)
}

func TestDedup_ThresholdIsStrict(t *testing.T) {
	// identical keys have ratio 1.0, which does not exceed a threshold of 1.0
	d := New(1.0)
	got := d.Dedup([]model.NormalizedJob{
		job("Analyst", "Acme", "NYC"),
		job("Analyst", "Acme", "Boston"),
	}, nil, nil)
	assert.Len(t, got, 2)
}

func TestNew_DefaultsThreshold(t *testing.T) {
	assert.Equal(t, DefaultThreshold, New(0).Threshold())
	assert.Equal(t, DefaultThreshold, New(1.5).Threshold())
	assert.Equal(t, 0.9, New(0.9).Threshold())
}

func TestPairKey_Normalizes(t *testing.T) {
	assert.Equal(t, "senior software engineer acme and co", PairKey("Sr. SWE,", "ACME & Co."))
}
