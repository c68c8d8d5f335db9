package spaceweather

import (
	"reflect"
	"testing"
	"time"
)

func TestDecode_CME(t *testing.T) {
	raw := []byte(`{
		"activityID": "2024-03-05T14:36:00-CME-001",
		"startTime": "2024-03-05T14:36Z",
		"note": "Partial halo event",
		"cmeAnalyses": [
			{"isMostAccurate": false, "speed": 410.5, "type": "C"},
			{"isMostAccurate": true, "speed": 442, "halfAngle": 24, "latitude": -12, "longitude": 37, "type": "S"}
		]
	}`)

	event, err := Decode(TypeCME, raw)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if event.ID != "2024-03-05T14:36:00-CME-001" {
		t.Errorf("ID = %q", event.ID)
	}
	if event.Type != TypeCME {
		t.Errorf("Type = %q, want CME", event.Type)
	}
	want := time.Date(2024, time.March, 5, 14, 36, 0, 0, time.UTC)
	if !event.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", event.Time, want)
	}
	if event.CME == nil {
		t.Fatal("CME details missing")
	}
	if len(event.CME.Analyses) != 2 {
		t.Fatalf("got %d analyses, want 2", len(event.CME.Analyses))
	}
	if !event.CME.HasMostAccurateAnalysis() {
		t.Error("expected a most-accurate analysis")
	}
	if event.CME.Analyses[1].Speed != 442 {
		t.Errorf("Analyses[1].Speed = %v, want 442", event.CME.Analyses[1].Speed)
	}
}

func TestDecode_FLR(t *testing.T) {
	raw := []byte(`{
		"flrID": "2024-03-06T01:10:00-FLR-001",
		"beginTime": "2024-03-06T01:10Z",
		"peakTime": "2024-03-06T01:29Z",
		"endTime": "2024-03-06T01:45Z",
		"classType": "M1.6",
		"sourceLocation": "S17E25"
	}`)

	event, err := Decode(TypeFLR, raw)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if event.FLR == nil {
		t.Fatal("FLR details missing")
	}
	if event.FLR.ClassType != "M1.6" {
		t.Errorf("ClassType = %q, want M1.6", event.FLR.ClassType)
	}
	if got := event.Summarize(); got.ClassType != "M1.6" {
		t.Errorf("Summarize().ClassType = %q, want M1.6", got.ClassType)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	if _, err := Decode(EventType("HSS"), []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestDecode_MissingID(t *testing.T) {
	if _, err := Decode(TypeIPS, []byte(`{"eventTime": "2024-03-06T02:00Z"}`)); err == nil {
		t.Fatal("expected validation error for missing id")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	at := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

	events := []Event{
		{
			ID: "cme-1", Type: TypeCME, Time: at,
			CME: &CMEDetails{
				Note: "trailing front",
				Analyses: []CMEAnalysis{
					{IsMostAccurate: true, Speed: 512, HalfAngle: 18, ModelType: "S"},
				},
			},
		},
		{
			ID: "gst-1", Type: TypeGST, Time: at,
			GST: &GSTDetails{
				KPIndexes: []KPIndexReading{
					{ObservedTime: at.Add(3 * time.Hour), KPIndex: 5.33, Source: "NOAA"},
				},
			},
		},
		{
			ID: "flr-1", Type: TypeFLR, Time: at,
			FLR: &FLRDetails{
				ClassType:      "X1.0",
				SourceLocation: "N05W60",
				PeakTime:       at.Add(12 * time.Minute),
				EndTime:        at.Add(30 * time.Minute),
			},
		},
		{
			ID: "ips-1", Type: TypeIPS, Time: at,
			IPS: &IPSDetails{Location: "Earth", Catalog: "M2M_CATALOG"},
		},
		{
			ID: "rbe-1", Type: TypeRBE, Time: at,
			RBE: &RBEDetails{Instruments: []string{"GOES-16: SEISS"}},
		},
	}

	for _, original := range events {
		t.Run(string(original.Type), func(t *testing.T) {
			raw, err := Encode(original)
			if err != nil {
				t.Fatalf("Encode returned error: %v", err)
			}
			decoded, err := Decode(original.Type, raw)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Errorf("round trip mismatch:\n got %#v\nwant %#v", decoded, original)
			}
		})
	}
}

func TestEvent_Validate(t *testing.T) {
	at := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{
			name:  "valid",
			event: Event{ID: "a", Type: TypeIPS, Time: at, IPS: &IPSDetails{}},
		},
		{
			name:    "missing id",
			event:   Event{Type: TypeIPS, Time: at, IPS: &IPSDetails{}},
			wantErr: true,
		},
		{
			name:    "unknown type",
			event:   Event{ID: "a", Type: "HSS", Time: at},
			wantErr: true,
		},
		{
			name:    "zero time",
			event:   Event{ID: "a", Type: TypeIPS, IPS: &IPSDetails{}},
			wantErr: true,
		},
		{
			name:    "detail mismatch",
			event:   Event{ID: "a", Type: TypeCME, Time: at, IPS: &IPSDetails{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummarize_CMEFlag(t *testing.T) {
	at := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

	withFlag := Event{ID: "a", Type: TypeCME, Time: at, CME: &CMEDetails{
		Analyses: []CMEAnalysis{{IsMostAccurate: false}, {IsMostAccurate: true}},
	}}
	if !withFlag.Summarize().MostAccurateAnalysis {
		t.Error("expected MostAccurateAnalysis true")
	}

	withoutFlag := Event{ID: "b", Type: TypeCME, Time: at, CME: &CMEDetails{
		Analyses: []CMEAnalysis{{IsMostAccurate: false}},
	}}
	if withoutFlag.Summarize().MostAccurateAnalysis {
		t.Error("expected MostAccurateAnalysis false")
	}
}
