// Package policy models the YAML camera description ("policy") files
// that define the focal plane geometry and detector metadata.
package policy

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Camera is the top-level camera description in a policy file.
type Camera struct {
	// Name is the camera name, e.g. "imsim"
	Name string `yaml:"name"`

	// PlateScale is the focal plane plate scale in arcsec/mm
	PlateScale float64 `yaml:"plateScale"`

	// CCDs maps full detector names (e.g. R01_S00) to their descriptions
	CCDs map[string]CCD `yaml:"CCDs"`
}

// CCD describes one detector in the focal plane.  Fields not listed
// here are ignored when decoding.
type CCD struct {
	// ID is the integer detector number, unique within the camera
	ID int `yaml:"id"`

	// Serial is the vendor serial number of the sensor
	Serial string `yaml:"serial"`

	// DetectorType distinguishes science sensors from guiders and
	// wavefront sensors
	DetectorType string `yaml:"detectorType"`

	// PhysicalType is the sensor technology, e.g. ITL or E2V
	PhysicalType string `yaml:"physicalType"`

	// RefPos is the reference pixel position (x, y)
	RefPos []float64 `yaml:"refpos"`

	// Offset is the position of the reference pixel in the focal plane, mm
	Offset []float64 `yaml:"offset"`

	// BBox is the bounding box of the sensor, [[x0, y0], [x1, y1]]
	BBox [][]int `yaml:"bbox"`

	// PixelSize is the pixel pitch in mm (x, y)
	PixelSize []float64 `yaml:"pixelSize"`

	// Transposed indicates the readout is transposed relative to the
	// focal plane coordinate system
	Transposed bool `yaml:"transposed"`
}

// Load converts a (path to a) yaml policy file into a Camera struct.
func Load(path string) (Camera, error) {
	cam := Camera{}
	f, err := os.Open(path)
	if err != nil {
		return cam, err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&cam)
	return cam, err
}
