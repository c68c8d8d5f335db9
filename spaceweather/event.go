// Package spaceweather defines the event model shared by the cache layer and
// its consumers.
//
// The provider publishes a closed set of event kinds (coronal mass ejections,
// geomagnetic storms, solar flares, interplanetary shocks and radiation belt
// enhancements). Event is a tagged union over that set: the Type field names
// the kind and exactly one of the detail pointers is populated. Dispatch is an
// explicit switch over EventType rather than an interface hierarchy, since the
// set of kinds is known at compile time.
package spaceweather

import (
	"fmt"
	"time"
)

// EventType identifies one of the provider's event kinds. The values are the
// provider's activity codes and double as storage keys, so they must not
// change.
type EventType string

const (
	// TypeCME is a coronal mass ejection.
	TypeCME EventType = "CME"
	// TypeGST is a geomagnetic storm.
	TypeGST EventType = "GST"
	// TypeFLR is a solar flare.
	TypeFLR EventType = "FLR"
	// TypeIPS is an interplanetary shock.
	TypeIPS EventType = "IPS"
	// TypeRBE is a radiation belt enhancement.
	TypeRBE EventType = "RBE"
)

// AllTypes returns every known event type in a stable order.
func AllTypes() []EventType {
	return []EventType{TypeCME, TypeGST, TypeFLR, TypeIPS, TypeRBE}
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case TypeCME, TypeGST, TypeFLR, TypeIPS, TypeRBE:
		return true
	}
	return false
}

// Event is a single space-weather event. ID is the provider's globally unique
// activity identifier. Time is the event's reference instant (start time for
// CMEs, storms and flares; observation time for shocks and enhancements).
// Exactly one detail pointer matching Type is non-nil.
type Event struct {
	ID   string
	Type EventType
	Time time.Time

	CME *CMEDetails
	GST *GSTDetails
	FLR *FLRDetails
	IPS *IPSDetails
	RBE *RBEDetails
}

// CMEAnalysis is one modeled analysis of a coronal mass ejection. A CME can
// carry several analyses; at most one is flagged as the most accurate.
type CMEAnalysis struct {
	IsMostAccurate bool
	Speed          float64
	HalfAngle      float64
	Latitude       float64
	Longitude      float64
	ModelType      string
}

// CMEDetails holds the coronal-mass-ejection specific fields.
type CMEDetails struct {
	Note     string
	Analyses []CMEAnalysis
}

// HasMostAccurateAnalysis reports whether any analysis carries the
// most-accurate flag. It is the summary-only scalar projected into the CME
// extras table.
func (d *CMEDetails) HasMostAccurateAnalysis() bool {
	if d == nil {
		return false
	}
	for _, a := range d.Analyses {
		if a.IsMostAccurate {
			return true
		}
	}
	return false
}

// KPIndexReading is one planetary K-index observation during a geomagnetic
// storm.
type KPIndexReading struct {
	ObservedTime time.Time
	KPIndex      float64
	Source       string
}

// GSTDetails holds the geomagnetic-storm specific fields.
type GSTDetails struct {
	KPIndexes []KPIndexReading
}

// FLRDetails holds the solar-flare specific fields. ClassType is the flare
// classification (e.g. "M1.6") projected into the FLR extras table for
// summary listings.
type FLRDetails struct {
	ClassType      string
	SourceLocation string
	PeakTime       time.Time
	EndTime        time.Time
}

// IPSDetails holds the interplanetary-shock specific fields.
type IPSDetails struct {
	Location string
	Catalog  string
}

// RBEDetails holds the radiation-belt-enhancement specific fields.
type RBEDetails struct {
	Instruments []string
}

// Validate checks the structural invariants of the tagged union: a known
// type, a non-empty id, a non-zero time and the matching detail pointer set.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("spaceweather: event id is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("spaceweather: unknown event type %q", e.Type)
	}
	if e.Time.IsZero() {
		return fmt.Errorf("spaceweather: event %s has no time", e.ID)
	}

	var ok bool
	switch e.Type {
	case TypeCME:
		ok = e.CME != nil
	case TypeGST:
		ok = e.GST != nil
	case TypeFLR:
		ok = e.FLR != nil
	case TypeIPS:
		ok = e.IPS != nil
	case TypeRBE:
		ok = e.RBE != nil
	}
	if !ok {
		return fmt.Errorf("spaceweather: event %s is missing %s details", e.ID, e.Type)
	}
	return nil
}

// Summary is the projection served by week listings. The derived fields are
// populated from the extras tables so listing a week never deserializes raw
// payloads.
type Summary struct {
	ID   string
	Type EventType
	Time time.Time

	// MostAccurateAnalysis is only meaningful for CME summaries.
	MostAccurateAnalysis bool

	// ClassType is only meaningful for FLR summaries.
	ClassType string
}

// Summarize derives the summary projection from a typed event. It is the
// write-side source for the extras tables.
func (e Event) Summarize() Summary {
	s := Summary{ID: e.ID, Type: e.Type, Time: e.Time}
	switch e.Type {
	case TypeCME:
		s.MostAccurateAnalysis = e.CME.HasMostAccurateAnalysis()
	case TypeFLR:
		if e.FLR != nil {
			s.ClassType = e.FLR.ClassType
		}
	}
	return s
}
