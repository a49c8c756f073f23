// Package ingest turns raw imsim files on disk into observation
// metadata records ready for downstream cataloguing.
package ingest

import (
	"os"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/cenkalti/backoff"

	"github.com/lsst-sims/imsimobs/imsim"
)

// Raw is one raw file's worth of translated metadata.
type Raw struct {
	// Path is the file the record came from
	Path string `json:"path" yaml:"path"`

	// Info is the translated header metadata
	Info imsim.ObservationInfo `json:"info" yaml:"info"`

	// DetectorExposureID uniquely identifies this detector's data
	// within its exposure
	DetectorExposureID int64 `json:"detectorExposureId" yaml:"detectorExposureId"`
}

// ParseRaw reads the primary header of a raw FITS file and translates
// it.  I/O, FITS format, and translation failures are surfaced to the
// caller; no partial record is returned.
func ParseRaw(path string, tr *imsim.Translator) (Raw, error) {
	raw := Raw{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return raw, err
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return raw, err
	}
	defer fits.Close()

	cards := imsim.PrimaryHeader(fits)
	id, info, err := tr.DetectorExposureID(cards)
	if err != nil {
		return raw, err
	}
	raw.Info = info
	raw.DetectorExposureID = id
	return raw, nil
}

// WaitForFile blocks until path exists or timeout elapses.  Raw files
// land asynchronously over the course of a night, so ingestion polls
// for them rather than failing on the first miss.
func WaitForFile(path string, timeout time.Duration) error {
	op := func() error {
		_, err := os.Stat(path)
		return err
	}
	return backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      timeout,
		Clock:               backoff.SystemClock})
}
