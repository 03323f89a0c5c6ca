package listing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/domain/listing"
)

func TestRatingSummarySequentialAddsMatchTrueMean(t *testing.T) {
	ratings := []int{5, 3, 4, 1, 2, 5, 4, 4, 3, 5}
	var summary listing.RatingSummary
	var total int
	for _, r := range ratings {
		summary = summary.Add(r)
		total += r
	}
	assert.Equal(t, len(ratings), summary.Count)
	assert.InDelta(t, float64(total)/float64(len(ratings)), summary.Average, 1e-9)
}

func TestRatingSummaryAddThenRemoveRestores(t *testing.T) {
	before := listing.RatingSummary{Average: 4.5, Count: 2}
	after := before.Add(3)
	assert.Equal(t, 3, after.Count)
	assert.InDelta(t, 4.0, after.Average, 1e-9)

	restored, err := after.Remove(3)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Count)
	assert.InDelta(t, 4.5, restored.Average, 1e-9)
}

func TestRatingSummaryRemoveLastReviewIsExactlyZero(t *testing.T) {
	summary := listing.RatingSummary{}.Add(4)
	restored, err := summary.Remove(4)
	require.NoError(t, err)
	assert.Equal(t, listing.RatingSummary{Average: 0, Count: 0}, restored)
}

func TestRatingSummaryRemoveFromEmptyFails(t *testing.T) {
	_, err := listing.RatingSummary{}.Remove(5)
	assert.ErrorIs(t, err, listing.ErrNoReviews)
}

func TestRecompute(t *testing.T) {
	assert.Equal(t, listing.RatingSummary{}, listing.Recompute(nil))

	summary := listing.Recompute([]int{4, 5})
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.5, summary.Average, 1e-9)
}
