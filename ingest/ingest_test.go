package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/lsst-sims/imsimobs/imsim"
)

const policyFixture = `name : "imsim"
plateScale : 20.0
CCDs :
  R22_S11 :
    id : 94
    serial : ITL-3800C-107
  R22_S12 :
    id : 95
    serial : ITL-3800C-007
`

func testTranslator(t *testing.T) *imsim.Translator {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "policy"), 0777); err != nil {
		t.Fatal(err)
	}
	err := os.WriteFile(filepath.Join(root, "policy", "imsim.yaml"), []byte(policyFixture), 0666)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := imsim.NewTranslator(imsim.New(root))
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

// writeRaw writes a minimal raw FITS file with the given header cards.
func writeRaw(t *testing.T, path string, cards []fitsio.Card) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	fits, err := fitsio.Create(f)
	if err != nil {
		t.Fatal(err)
	}
	im := fitsio.NewImage(16, []int{2, 2})
	defer im.Close()
	if err := im.Header().Append(cards...); err != nil {
		t.Fatal(err)
	}
	if err := im.Write([]int16{0, 1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := fits.Write(im); err != nil {
		t.Fatal(err)
	}
	if err := fits.Close(); err != nil {
		t.Fatal(err)
	}
}

func rawCards() []fitsio.Card {
	return []fitsio.Card{
		{Name: "OBSID", Value: 5000},
		{Name: "CHIPID", Value: "R22_S11"},
		{Name: "DATE-OBS", Value: "2022-10-05T03:21:22.393"},
		{Name: "IMGTYPE", Value: "SKYEXP"},
		{Name: "FILTER", Value: "r"},
		{Name: "EXPTIME", Value: 30.0},
	}
}

func TestParseRaw(t *testing.T) {
	tr := testTranslator(t)
	path := filepath.Join(t.TempDir(), "raw.fits")
	writeRaw(t, path, rawCards())

	raw, err := ParseRaw(path, tr)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Path != path {
		t.Errorf("expected path %s got %s", path, raw.Path)
	}
	if raw.Info.ExposureID != 5000 || raw.Info.DetectorNum != 94 {
		t.Errorf("translation wrong: %+v", raw.Info)
	}
	if raw.DetectorExposureID != 50000094 {
		t.Errorf("expected 50000094 got %d", raw.DetectorExposureID)
	}
}

func TestParseRawMissingFile(t *testing.T) {
	tr := testTranslator(t)
	_, err := ParseRaw(filepath.Join(t.TempDir(), "nope.fits"), tr)
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestParseRawNotFITS(t *testing.T) {
	tr := testTranslator(t)
	path := filepath.Join(t.TempDir(), "raw.fits")
	if err := os.WriteFile(path, []byte("not a fits file"), 0666); err != nil {
		t.Fatal(err)
	}
	_, err := ParseRaw(path, tr)
	if err == nil {
		t.Error("expected error for malformed file, got nil")
	}
}

func TestParseRawBadHeader(t *testing.T) {
	tr := testTranslator(t)
	path := filepath.Join(t.TempDir(), "raw.fits")
	// CHIPID missing
	writeRaw(t, path, []fitsio.Card{
		{Name: "OBSID", Value: 5000},
		{Name: "DATE-OBS", Value: "2022-10-05T03:21:22.393"},
	})
	_, err := ParseRaw(path, tr)
	if err == nil {
		t.Error("expected error for incomplete header, got nil")
	}
}

func TestWaitForFileAlreadyThere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.fits")
	if err := os.WriteFile(path, []byte("x"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := WaitForFile(path, time.Second); err != nil {
		t.Errorf("expected nil for existing file, got %v", err)
	}
}

func TestWaitForFileLandsLate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.fits")
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(path, []byte("x"), 0666)
	}()
	if err := WaitForFile(path, 5*time.Second); err != nil {
		t.Errorf("expected file to be found, got %v", err)
	}
}

func TestWaitForFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.fits")
	if err := WaitForFile(path, 200*time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}
