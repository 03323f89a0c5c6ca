package listing

import "time"

type ListingSubmitted struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingSubmitted) EventName() string     { return "listing.submitted" }
func (e ListingSubmitted) AggregateID() string   { return string(e.ListingID) }
func (e ListingSubmitted) OccurredAt() time.Time { return e.At }

type ListingApproved struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingApproved) EventName() string     { return "listing.approved" }
func (e ListingApproved) AggregateID() string   { return string(e.ListingID) }
func (e ListingApproved) OccurredAt() time.Time { return e.At }

type ListingRejected struct {
	ListingID ListingID
	Reason    string
	At        time.Time
}

func (e ListingRejected) EventName() string     { return "listing.rejected" }
func (e ListingRejected) AggregateID() string   { return string(e.ListingID) }
func (e ListingRejected) OccurredAt() time.Time { return e.At }

type ListingUpdated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdated) EventName() string     { return "listing.updated" }
func (e ListingUpdated) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdated) OccurredAt() time.Time { return e.At }

// ListingRatingChanged carries the recomputed aggregate so any open view can
// apply it without re-fetching the listing.
type ListingRatingChanged struct {
	ListingID ListingID
	Average   float64
	Count     int
	At        time.Time
}

func (e ListingRatingChanged) EventName() string     { return "listing.rating_changed" }
func (e ListingRatingChanged) AggregateID() string   { return string(e.ListingID) }
func (e ListingRatingChanged) OccurredAt() time.Time { return e.At }
