package imsim

import (
	"fmt"
	"strconv"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/lsst-sims/imsimobs/translate"
)

// Header keys written by the imsim simulator.  OBSID, CHIPID and
// DATE-OBS are required; the rest fall back to defaults when absent.
const (
	keyExposureID = "OBSID"
	keyDetector   = "CHIPID"
	keyDateObs    = "DATE-OBS"
	keyImageType  = "IMGTYPE"
	keyFilter     = "FILTER"
	keyExpTime    = "EXPTIME"
	keyObsLat     = "OBS-LAT"
	keyObsLong    = "OBS-LONG"
	keyObsElev    = "OBS-ELEV"
)

// dateLayouts are the timestamp formats accepted for DATE-OBS.  FITS
// timestamps carry no zone and are taken as UTC.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ObservationInfo is the standard representation of one raw file's
// header metadata.
type ObservationInfo struct {
	// ExposureID identifies the exposure event the file belongs to
	ExposureID int64 `json:"exposureId" yaml:"exposureId"`

	// DetectorName is the full detector name, e.g. R22_S11
	DetectorName string `json:"detectorName" yaml:"detectorName"`

	// DetectorNum is the integer detector number from the camera policy
	DetectorNum int `json:"detectorNum" yaml:"detectorNum"`

	// DateBeg is the start time of the exposure, UTC
	DateBeg time.Time `json:"dateBeg" yaml:"dateBeg"`

	// ObservingDay is the YYYYMMDD observing day the exposure belongs to
	ObservingDay int `json:"observingDay" yaml:"observingDay"`

	// ImageType is the kind of observation, e.g. SKYEXP, BIAS, FLAT
	ImageType string `json:"imageType" yaml:"imageType"`

	// Filter is the physical filter name
	Filter string `json:"filter" yaml:"filter"`

	// ExposureTime is the exposure duration in seconds
	ExposureTime float64 `json:"exposureTime" yaml:"exposureTime"`

	// Location is the observatory location, from the header or the
	// site default
	Location translate.Location `json:"location" yaml:"location"`
}

// Translator converts raw imsim FITS header cards into ObservationInfo
// records.  It holds the camera's detector ID table, loaded once at
// construction; a Translator is safe for concurrent use.
type Translator struct {
	cam Camera
	ids map[string]int
}

// NewTranslator reads the camera's detector table and returns a
// Translator for it.
func NewTranslator(cam Camera) (*Translator, error) {
	ids, err := cam.DetectorIDs()
	if err != nil {
		return nil, err
	}
	return &Translator{cam: cam, ids: ids}, nil
}

// Camera returns the camera this translator was built for.
func (t *Translator) Camera() Camera {
	return t.cam
}

// Translate converts the header cards of one raw file into an
// ObservationInfo.  Missing required cards or detectors unknown to the
// camera are errors.
func (t *Translator) Translate(cards []fitsio.Card) (ObservationInfo, error) {
	var info ObservationInfo

	expID, err := cardInt(cards, keyExposureID)
	if err != nil {
		return info, err
	}
	info.ExposureID = expID

	name, err := cardString(cards, keyDetector)
	if err != nil {
		return info, err
	}
	info.DetectorName = name
	num, ok := t.ids[name]
	if !ok {
		return info, fmt.Errorf("detector %s is not in the %s camera", name, t.cam.Name())
	}
	info.DetectorNum = num

	dateStr, err := cardString(cards, keyDateObs)
	if err != nil {
		return info, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return info, err
	}
	info.DateBeg = date
	info.ObservingDay = translate.ObservingDay(date)

	// remaining cards are optional
	info.ImageType, _ = cardString(cards, keyImageType)
	info.Filter, _ = cardString(cards, keyFilter)
	if texp, err := cardFloat(cards, keyExpTime); err == nil {
		info.ExposureTime = texp
	}
	info.Location = location(cards)

	return info, nil
}

// DetectorExposureID translates the cards and returns the combined
// detector-exposure ID along with the full record.
func (t *Translator) DetectorExposureID(cards []fitsio.Card) (int64, ObservationInfo, error) {
	info, err := t.Translate(cards)
	if err != nil {
		return 0, info, err
	}
	id, err := t.cam.DetectorExposureID(info.ExposureID, info.DetectorNum)
	return id, info, err
}

// location assembles the observatory location from the header, falling
// back to the site default when any coordinate is missing.
func location(cards []fitsio.Card) translate.Location {
	lat, errLat := cardFloat(cards, keyObsLat)
	lon, errLon := cardFloat(cards, keyObsLong)
	elev, errElev := cardFloat(cards, keyObsElev)
	if errLat != nil || errLon != nil || errElev != nil {
		return translate.DefaultLocation
	}
	return translate.Location{Latitude: lat, Longitude: lon, Elevation: elev}
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not an accepted DATE-OBS format", s)
}

func findCard(cards []fitsio.Card, name string) (fitsio.Card, bool) {
	for _, c := range cards {
		if c.Name == name {
			return c, true
		}
	}
	return fitsio.Card{}, false
}

// cardInt fetches a card and coerces its value to int64.  Integer-valued
// strings are accepted; imsim has written OBSID both ways.
func cardInt(cards []fitsio.Card, name string) (int64, error) {
	c, ok := findCard(cards, name)
	if !ok {
		return 0, fmt.Errorf("header has no %s card", name)
	}
	switch v := c.Value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("%s card has non-integer value %v", name, c.Value)
	}
}

func cardString(cards []fitsio.Card, name string) (string, error) {
	c, ok := findCard(cards, name)
	if !ok {
		return "", fmt.Errorf("header has no %s card", name)
	}
	s, ok := c.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s card has non-string value %v", name, c.Value)
	}
	return s, nil
}

func cardFloat(cards []fitsio.Card, name string) (float64, error) {
	c, ok := findCard(cards, name)
	if !ok {
		return 0, fmt.Errorf("header has no %s card", name)
	}
	switch v := c.Value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s card has non-numeric value %v", name, c.Value)
	}
}
