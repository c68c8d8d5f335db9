package spaceweather

import (
	"encoding/json"
	"fmt"
	"time"
)

// providerTimeLayout is the minute-precision UTC layout the provider uses in
// its documents, e.g. "2024-03-05T14:36Z".
const providerTimeLayout = "2006-01-02T15:04Z"

func parseProviderTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(providerTimeLayout, s); err == nil {
		return t, nil
	}
	// Some catalog entries carry full RFC 3339 timestamps.
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("spaceweather: parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func formatProviderTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(providerTimeLayout)
}

// Wire documents. Each mirrors the provider's canonical JSON for one event
// kind; field mapping to the typed structs is explicit so no reflection-based
// row mapping is needed anywhere downstream.

type cmeDocument struct {
	ActivityID string        `json:"activityID"`
	StartTime  string        `json:"startTime"`
	Note       string        `json:"note,omitempty"`
	Analyses   []cmeAnalysis `json:"cmeAnalyses,omitempty"`
}

type cmeAnalysis struct {
	IsMostAccurate bool    `json:"isMostAccurate"`
	Speed          float64 `json:"speed,omitempty"`
	HalfAngle      float64 `json:"halfAngle,omitempty"`
	Latitude       float64 `json:"latitude,omitempty"`
	Longitude      float64 `json:"longitude,omitempty"`
	ModelType      string  `json:"type,omitempty"`
}

type gstDocument struct {
	GSTID     string    `json:"gstID"`
	StartTime string    `json:"startTime"`
	KPIndexes []kpIndex `json:"allKpIndex,omitempty"`
}

type kpIndex struct {
	ObservedTime string  `json:"observedTime"`
	KPIndex      float64 `json:"kpIndex"`
	Source       string  `json:"source,omitempty"`
}

type flrDocument struct {
	FLRID          string `json:"flrID"`
	BeginTime      string `json:"beginTime"`
	PeakTime       string `json:"peakTime,omitempty"`
	EndTime        string `json:"endTime,omitempty"`
	ClassType      string `json:"classType,omitempty"`
	SourceLocation string `json:"sourceLocation,omitempty"`
}

type ipsDocument struct {
	ActivityID string `json:"activityID"`
	EventTime  string `json:"eventTime"`
	Location   string `json:"location,omitempty"`
	Catalog    string `json:"catalog,omitempty"`
}

type rbeDocument struct {
	RBEID       string   `json:"rbeID"`
	EventTime   string   `json:"eventTime"`
	Instruments []string `json:"instruments,omitempty"`
}

// Decode reconstructs a typed event from the provider's raw document for the
// given event type. The raw payload is the canonical document as fetched, so
// a cached event can be rebuilt losslessly without another fetch.
func Decode(typ EventType, raw []byte) (Event, error) {
	switch typ {
	case TypeCME:
		return decodeCME(raw)
	case TypeGST:
		return decodeGST(raw)
	case TypeFLR:
		return decodeFLR(raw)
	case TypeIPS:
		return decodeIPS(raw)
	case TypeRBE:
		return decodeRBE(raw)
	}
	return Event{}, fmt.Errorf("spaceweather: decode: unknown event type %q", typ)
}

// Encode renders the typed event back into the provider's document form. It
// is the inverse of Decode for documents produced by this package and exists
// mainly for fixtures and tests; cached payloads are stored as fetched.
func Encode(e Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	switch e.Type {
	case TypeCME:
		doc := cmeDocument{ActivityID: e.ID, StartTime: formatProviderTime(e.Time), Note: e.CME.Note}
		for _, a := range e.CME.Analyses {
			doc.Analyses = append(doc.Analyses, cmeAnalysis{
				IsMostAccurate: a.IsMostAccurate,
				Speed:          a.Speed,
				HalfAngle:      a.HalfAngle,
				Latitude:       a.Latitude,
				Longitude:      a.Longitude,
				ModelType:      a.ModelType,
			})
		}
		return json.Marshal(doc)
	case TypeGST:
		doc := gstDocument{GSTID: e.ID, StartTime: formatProviderTime(e.Time)}
		for _, r := range e.GST.KPIndexes {
			doc.KPIndexes = append(doc.KPIndexes, kpIndex{
				ObservedTime: formatProviderTime(r.ObservedTime),
				KPIndex:      r.KPIndex,
				Source:       r.Source,
			})
		}
		return json.Marshal(doc)
	case TypeFLR:
		return json.Marshal(flrDocument{
			FLRID:          e.ID,
			BeginTime:      formatProviderTime(e.Time),
			PeakTime:       formatProviderTime(e.FLR.PeakTime),
			EndTime:        formatProviderTime(e.FLR.EndTime),
			ClassType:      e.FLR.ClassType,
			SourceLocation: e.FLR.SourceLocation,
		})
	case TypeIPS:
		return json.Marshal(ipsDocument{
			ActivityID: e.ID,
			EventTime:  formatProviderTime(e.Time),
			Location:   e.IPS.Location,
			Catalog:    e.IPS.Catalog,
		})
	case TypeRBE:
		return json.Marshal(rbeDocument{
			RBEID:       e.ID,
			EventTime:   formatProviderTime(e.Time),
			Instruments: e.RBE.Instruments,
		})
	}
	return nil, fmt.Errorf("spaceweather: encode: unknown event type %q", e.Type)
}

func decodeCME(raw []byte) (Event, error) {
	var doc cmeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Event{}, fmt.Errorf("spaceweather: decode CME: %w", err)
	}
	start, err := parseProviderTime(doc.StartTime)
	if err != nil {
		return Event{}, err
	}
	details := &CMEDetails{Note: doc.Note}
	for _, a := range doc.Analyses {
		details.Analyses = append(details.Analyses, CMEAnalysis{
			IsMostAccurate: a.IsMostAccurate,
			Speed:          a.Speed,
			HalfAngle:      a.HalfAngle,
			Latitude:       a.Latitude,
			Longitude:      a.Longitude,
			ModelType:      a.ModelType,
		})
	}
	e := Event{ID: doc.ActivityID, Type: TypeCME, Time: start, CME: details}
	return e, e.Validate()
}

func decodeGST(raw []byte) (Event, error) {
	var doc gstDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Event{}, fmt.Errorf("spaceweather: decode GST: %w", err)
	}
	start, err := parseProviderTime(doc.StartTime)
	if err != nil {
		return Event{}, err
	}
	details := &GSTDetails{}
	for _, r := range doc.KPIndexes {
		observed, err := parseProviderTime(r.ObservedTime)
		if err != nil {
			return Event{}, err
		}
		details.KPIndexes = append(details.KPIndexes, KPIndexReading{
			ObservedTime: observed,
			KPIndex:      r.KPIndex,
			Source:       r.Source,
		})
	}
	e := Event{ID: doc.GSTID, Type: TypeGST, Time: start, GST: details}
	return e, e.Validate()
}

func decodeFLR(raw []byte) (Event, error) {
	var doc flrDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Event{}, fmt.Errorf("spaceweather: decode FLR: %w", err)
	}
	begin, err := parseProviderTime(doc.BeginTime)
	if err != nil {
		return Event{}, err
	}
	peak, err := parseProviderTime(doc.PeakTime)
	if err != nil {
		return Event{}, err
	}
	end, err := parseProviderTime(doc.EndTime)
	if err != nil {
		return Event{}, err
	}
	e := Event{
		ID:   doc.FLRID,
		Type: TypeFLR,
		Time: begin,
		FLR: &FLRDetails{
			ClassType:      doc.ClassType,
			SourceLocation: doc.SourceLocation,
			PeakTime:       peak,
			EndTime:        end,
		},
	}
	return e, e.Validate()
}

func decodeIPS(raw []byte) (Event, error) {
	var doc ipsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Event{}, fmt.Errorf("spaceweather: decode IPS: %w", err)
	}
	at, err := parseProviderTime(doc.EventTime)
	if err != nil {
		return Event{}, err
	}
	e := Event{
		ID:   doc.ActivityID,
		Type: TypeIPS,
		Time: at,
		IPS:  &IPSDetails{Location: doc.Location, Catalog: doc.Catalog},
	}
	return e, e.Validate()
}

func decodeRBE(raw []byte) (Event, error) {
	var doc rbeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Event{}, fmt.Errorf("spaceweather: decode RBE: %w", err)
	}
	at, err := parseProviderTime(doc.EventTime)
	if err != nil {
		return Event{}, err
	}
	e := Event{
		ID:   doc.RBEID,
		Type: TypeRBE,
		Time: at,
		RBE:  &RBEDetails{Instruments: doc.Instruments},
	}
	return e, e.Validate()
}
