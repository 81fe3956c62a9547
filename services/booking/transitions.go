package booking

import "homeease/models"

var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingRejected, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingCancelled, models.BookingCompleted},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
