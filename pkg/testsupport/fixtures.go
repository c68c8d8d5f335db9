// Package testsupport provides fixture helpers shared by the test suites.
package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/helioforecast/go-spaceweather-cache/spaceweather"
)

// LoadFixture loads test data from a fixture file. The path is relative to
// the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// RandomEventID generates a provider-shaped activity id for the event type,
// unique per call, e.g. "2024-03-05T14:36:00-CME-1b4e28ba".
func RandomEventID(typ spaceweather.EventType, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s",
		at.UTC().Format("2006-01-02T15:04:05"),
		typ,
		uuid.NewString()[:8],
	)
}

// MustDocument encodes the event into a Document, failing the test on error.
func MustDocument(t *testing.T, event spaceweather.Event) spaceweather.Document {
	t.Helper()

	doc, err := spaceweather.NewDocument(event)
	if err != nil {
		t.Fatalf("failed to build document for %s: %v", event.ID, err)
	}
	return doc
}

// NewCMEEvent builds a minimal valid CME event at the given instant.
func NewCMEEvent(at time.Time, mostAccurate bool) spaceweather.Event {
	return spaceweather.Event{
		ID:   RandomEventID(spaceweather.TypeCME, at),
		Type: spaceweather.TypeCME,
		Time: at,
		CME: &spaceweather.CMEDetails{
			Analyses: []spaceweather.CMEAnalysis{
				{IsMostAccurate: mostAccurate, Speed: 450, ModelType: "S"},
			},
		},
	}
}

// NewFLREvent builds a minimal valid solar-flare event at the given instant.
func NewFLREvent(at time.Time, classType string) spaceweather.Event {
	return spaceweather.Event{
		ID:   RandomEventID(spaceweather.TypeFLR, at),
		Type: spaceweather.TypeFLR,
		Time: at,
		FLR: &spaceweather.FLRDetails{
			ClassType: classType,
			PeakTime:  at.Add(10 * time.Minute),
			EndTime:   at.Add(25 * time.Minute),
		},
	}
}
