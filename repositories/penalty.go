package repositories

import (
	"OPDQueue/config"
	"OPDQueue/models"
	"time"
)

// penaltyWrite is the update one sweep pass owes an overdue booking.
type penaltyWrite struct {
	MissedCount int
	Cancel      bool
}

// sweepOutcome computes the penalty write for a booking, or reports that none
// is needed: not overdue, already counted, checked in, or no longer Waiting.
// The last two guards mean a booking that checked in or reached a terminal
// status between the candidate query and this call is left alone.
func sweepOutcome(token *models.QueueToken, now time.Time, policy config.AdmissionPolicy) (penaltyWrite, bool) {
	if token.Status != models.StatusWaiting || token.IsCheckedIn {
		return penaltyWrite{}, false
	}
	due := models.PenaltiesDue(token.AppointmentTime, now, policy.GracePeriod)
	if due > policy.MissedThreshold {
		due = policy.MissedThreshold
	}
	if due <= token.MissedCount {
		return penaltyWrite{}, false
	}
	return penaltyWrite{MissedCount: due, Cancel: due >= policy.MissedThreshold}, true
}
