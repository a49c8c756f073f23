// Package translate contains shared helpers for translating raw header
// metadata into the standard observation representation: the detector ID
// table loader, the detector-exposure ID encoder, and the observatory
// time and location conventions.
//
// These routines deliberately avoid the full camera policy model in
// package policy so that the ingest path carries minimal dependencies.
package translate

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// RolloverTime is the offset from UTC at which the observing day rolls
// over; the observatory day clock starts at UTC+8.
const RolloverTime = 8 * time.Hour

// TZero is the reference epoch used as the time origin for exposure
// timestamps.
var TZero = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// Location is a geodetic position on Earth.
type Location struct {
	// Latitude is the geodetic latitude in degrees, north positive
	Latitude float64 `json:"latitude" yaml:"latitude"`

	// Longitude is the longitude in degrees, east positive
	Longitude float64 `json:"longitude" yaml:"longitude"`

	// Elevation is the height above sea level in meters
	Elevation float64 `json:"elevation" yaml:"elevation"`
}

// DefaultLocation is the observatory location assumed when raw headers
// do not carry one.
var DefaultLocation = Location{
	Latitude:  -30.244639,
	Longitude: -70.749417,
	Elevation: 2663.0,
}

// ccdRecord is the part of a policy CCD entry the ID table loader cares
// about.  ID is a pointer so an absent key is distinguishable from zero.
type ccdRecord struct {
	ID *int `yaml:"id"`
}

// ReadDetectorIDs reads a camera policy file and retrieves the mapping
// from CCD name to integer detector number.
//
// The policy document is parsed directly rather than through the policy
// package camera model; these files are large and only the IDs are
// needed here.  The returned map is built fresh on every call.
func ReadDetectorIDs(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc struct {
		CCDs map[string]ccdRecord `yaml:"CCDs"`
	}
	err = yaml.NewDecoder(f).Decode(&doc)
	if err != nil {
		return nil, err
	}
	if doc.CCDs == nil {
		return nil, fmt.Errorf("camera policy %s has no CCDs section", path)
	}
	mapping := make(map[string]int, len(doc.CCDs))
	for ccd, record := range doc.CCDs {
		if record.ID == nil {
			return nil, fmt.Errorf("camera policy %s: CCD %s has no id field", path, ccd)
		}
		mapping[ccd] = *record.ID
	}
	return mapping, nil
}

// Mode selects how ComputeDetectorExposureID combines an exposure ID
// with a detector number.
type Mode string

const (
	// ModeConcat appends the zero-padded decimal digits of the detector
	// number to the decimal digits of the exposure ID.
	ModeConcat Mode = "concat"

	// ModeMultiply reserves maxNum values per exposure arithmetically,
	// maxNum*exposureID + detectorNum.
	ModeMultiply Mode = "multiply"
)

// ComputeDetectorExposureID combines an exposure ID and a detector
// number into a single integer that uniquely identifies one detector's
// data within one exposure.  maxNum is the number of detector values to
// reserve space for; detectorNum must be less than it.
//
// The exposure ID is assumed to be non-negative; this is not validated.
func ComputeDetectorExposureID(exposureID int64, detectorNum, maxNum int, mode Mode) (int64, error) {
	if detectorNum >= maxNum {
		return 0, fmt.Errorf("detector number has value %d >= %d", detectorNum, maxNum)
	}
	switch mode {
	case ModeConcat:
		// string concatenation, not arithmetic; the detector number is
		// zero-padded to the full digit width of maxNum
		npad := len(strconv.Itoa(maxNum))
		return strconv.ParseInt(fmt.Sprintf("%d%0*d", exposureID, npad, detectorNum), 10, 64)
	case ModeMultiply:
		return int64(maxNum)*exposureID + int64(detectorNum), nil
	default:
		return 0, fmt.Errorf("computation mode of '%s' is not understood", mode)
	}
}

// ObservingDay returns the observing day for t as a YYYYMMDD integer.
// The day boundary is placed so that an entire night of observing at
// the site shares one day number, per RolloverTime.
func ObservingDay(t time.Time) int {
	t = t.UTC().Add(RolloverTime)
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
