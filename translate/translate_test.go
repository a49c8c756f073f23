package translate_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lsst-sims/imsimobs/translate"
)

func ExampleComputeDetectorExposureID() {
	id, _ := translate.ComputeDetectorExposureID(5000, 5, 1000, translate.ModeConcat)
	fmt.Println(id)
	// Output: 50000005
}

func ExampleComputeDetectorExposureID_multiply() {
	id, _ := translate.ComputeDetectorExposureID(5000, 5, 1000, translate.ModeMultiply)
	fmt.Println(id)
	// Output: 5000005
}

func TestComputeDetectorExposureIDConcatPadsToMaxNumWidth(t *testing.T) {
	id, err := translate.ComputeDetectorExposureID(5000, 999, 1000, translate.ModeConcat)
	if err != nil {
		t.Fatal(err)
	}
	if id != 50000999 {
		t.Errorf("expected 50000999 got %d", id)
	}
}

func TestComputeDetectorExposureIDRejectsTooLargeDetector(t *testing.T) {
	_, err := translate.ComputeDetectorExposureID(5000, 1000, 1000, translate.ModeConcat)
	if err == nil {
		t.Error("expected error for detector number equal to maxNum, got nil")
	}
}

func TestComputeDetectorExposureIDRejectsUnknownMode(t *testing.T) {
	_, err := translate.ComputeDetectorExposureID(5000, 5, 1000, translate.Mode("bogus"))
	if err == nil {
		t.Error("expected error for unknown mode, got nil")
	}
}

func TestComputeDetectorExposureIDInjectiveInDetector(t *testing.T) {
	for _, mode := range []translate.Mode{translate.ModeConcat, translate.ModeMultiply} {
		seen := map[int64]int{}
		for det := 0; det < 100; det++ {
			id, err := translate.ComputeDetectorExposureID(123456, det, 1000, mode)
			if err != nil {
				t.Fatalf("mode %s detector %d: %v", mode, det, err)
			}
			if prev, ok := seen[id]; ok {
				t.Errorf("mode %s: detectors %d and %d both map to %d", mode, prev, det, id)
			}
			seen[id] = det
		}
	}
}

func TestComputeDetectorExposureIDZeroExposure(t *testing.T) {
	// exposure 0 concatenated with detector 5 parses as 00005 = 5;
	// leading zeros in the exposure ID are the caller's problem
	id, err := translate.ComputeDetectorExposureID(0, 5, 1000, translate.ModeConcat)
	if err != nil {
		t.Fatal(err)
	}
	if id != 5 {
		t.Errorf("expected 5 got %d", id)
	}
}

const policyFixture = `name : "imsim"
plateScale : 20.0
CCDs :
  R01_S00 :
    id : 0
    serial : ITL-3800C-145
  R01_S01 :
    id : 1
    serial : ITL-3800C-022
  R01_S02 :
    id : 2
    serial : ITL-3800C-041
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imsim.yaml")
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadDetectorIDs(t *testing.T) {
	path := writeFixture(t, policyFixture)
	ids, err := translate.ReadDetectorIDs(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := map[string]int{"R01_S00": 0, "R01_S01": 1, "R01_S02": 2}
	if len(ids) != len(expected) {
		t.Fatalf("expected %d detectors got %d", len(expected), len(ids))
	}
	for name, id := range expected {
		if ids[name] != id {
			t.Errorf("detector %s: expected id %d got %d", name, id, ids[name])
		}
	}
}

func TestReadDetectorIDsMissingFile(t *testing.T) {
	_, err := translate.ReadDetectorIDs(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestReadDetectorIDsMalformedYAML(t *testing.T) {
	path := writeFixture(t, "CCDs: [a, b\n  bad: {{")
	_, err := translate.ReadDetectorIDs(path)
	if err == nil {
		t.Error("expected error for malformed yaml, got nil")
	}
}

func TestReadDetectorIDsNoCCDs(t *testing.T) {
	path := writeFixture(t, "name: imsim\nplateScale: 20.0\n")
	_, err := translate.ReadDetectorIDs(path)
	if err == nil {
		t.Error("expected error for document without CCDs, got nil")
	}
}

func TestReadDetectorIDsMissingID(t *testing.T) {
	path := writeFixture(t, "CCDs:\n  R01_S00:\n    serial: ITL-3800C-145\n")
	_, err := translate.ReadDetectorIDs(path)
	if err == nil {
		t.Error("expected error for CCD without id, got nil")
	}
}

func TestObservingDayRollsOverAtUTCPlus8(t *testing.T) {
	// 20:00 UTC is after the rollover boundary, so the night that starts
	// then carries the next calendar day's number
	evening := time.Date(2020, 1, 1, 20, 0, 0, 0, time.UTC)
	if day := translate.ObservingDay(evening); day != 20200102 {
		t.Errorf("expected 20200102 got %d", day)
	}
	morning := time.Date(2020, 1, 2, 8, 0, 0, 0, time.UTC)
	if day := translate.ObservingDay(morning); day != 20200102 {
		t.Errorf("expected 20200102 got %d", day)
	}
	midday := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	if day := translate.ObservingDay(midday); day != 20200101 {
		t.Errorf("expected 20200101 got %d", day)
	}
}
