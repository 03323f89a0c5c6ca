package listing

import "errors"

var ErrNoReviews = errors.New("listing: rating summary has no reviews")

// RatingSummary is the (average, count) pair shown on listing cards.
//
// The incremental Add/Remove arithmetic mirrors what clients apply
// optimistically between fetches. It accumulates floating-point drift over
// repeated updates, so the stored value is always replaced by a recomputation
// from the review rows (see Recompute) when a review is created or deleted.
type RatingSummary struct {
	Average float64
	Count   int
}

// Add folds one more rating into the summary.
func (s RatingSummary) Add(rating int) RatingSummary {
	return RatingSummary{
		Average: (s.Average*float64(s.Count) + float64(rating)) / float64(s.Count+1),
		Count:   s.Count + 1,
	}
}

// Remove backs one rating out of the summary. An empty result collapses to
// exactly (0, 0) rather than dividing by zero.
func (s RatingSummary) Remove(rating int) (RatingSummary, error) {
	if s.Count == 0 {
		return RatingSummary{}, ErrNoReviews
	}
	if s.Count == 1 {
		return RatingSummary{}, nil
	}
	return RatingSummary{
		Average: (s.Average*float64(s.Count) - float64(rating)) / float64(s.Count-1),
		Count:   s.Count - 1,
	}, nil
}

// Recompute derives the authoritative summary from raw review ratings.
func Recompute(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	var total int
	for _, r := range ratings {
		total += r
	}
	return RatingSummary{
		Average: float64(total) / float64(len(ratings)),
		Count:   len(ratings),
	}
}
