package jca

import (
	"brokertrack-backend/lib/textutil"
)

// Status is the coarse declaration status stored on a shipment.
type Status string

const (
	StatusPending          Status = "Pending"
	StatusReleaseReady     Status = "Release Ready"
	StatusReleased         Status = "Released"
	StatusQueried          Status = "Queried"
	StatusAssessment       Status = "Assessment"
	StatusInProgress       Status = "In Progress"
	StatusAssessmentNotice Status = "Assessment Notice Need to be Paid"
	StatusNotValid         Status = "Not Valid"
)

// Classify derives the coarse status from an extracted result.
//
// The portal never states a declaration's overall status outright, so
// this is a heuristic over its free-text fields. Rules are evaluated
// in order and the first match wins, reordering them changes the
// outcome for records matching more than one rule.
func Classify(r Result) Status {
	if r.NotFound {
		return StatusNotValid
	}

	release := r.Detail(DetailCustomsRelease)
	exitNote := r.Detail(DetailCustomsExitNote)

	switch {
	case textutil.ContainsAny(release, "generated") && textutil.ContainsAny(exitNote, "generated"):
		return StatusReleased
	case textutil.ContainsAny(release, "generated"):
		return StatusReleaseReady
	case len(r.AssignedUnits) == 0:
		return StatusAssessmentNotice
	}

	for _, u := range r.AssignedUnits {
		if textutil.ContainsAny(u.Status, "query", "queried") {
			return StatusQueried
		}
	}
	for _, u := range r.AssignedUnits {
		if textutil.ContainsAny(u.Status, "approved", "completed") {
			return StatusAssessment
		}
	}
	if len(r.AssignedUnits) > 0 {
		return StatusInProgress
	}
	return StatusPending
}

// TerminalStatuses are the statuses a shipment is never rescraped
// from.
var TerminalStatuses = []Status{StatusReleased, StatusNotValid}
