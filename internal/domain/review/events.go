package review

import (
	"time"

	"homestay/internal/domain/listing"
)

type ReviewSubmitted struct {
	ReviewID  ReviewID
	ListingID listing.ListingID
	AuthorID  string
	Rating    int
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }

type ReviewDeleted struct {
	ReviewID  ReviewID
	ListingID listing.ListingID
	At        time.Time
}

func (e ReviewDeleted) EventName() string     { return "review.deleted" }
func (e ReviewDeleted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewDeleted) OccurredAt() time.Time { return e.At }
