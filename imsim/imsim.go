// Package imsim adapts the imsim simulation of the LSST camera to the
// observation metadata framework: it ties the camera policy file to the
// detector ID helpers and translates raw imsim FITS headers into the
// standard observation representation.
package imsim

import (
	"path/filepath"

	"github.com/lsst-sims/imsimobs/policy"
	"github.com/lsst-sims/imsimobs/translate"
)

const (
	// CameraName is the name of this camera realisation.
	CameraName = "imsim"

	// PolicyFile is the camera description file, relative to the
	// installation root.
	PolicyFile = "policy/imsim.yaml"

	// MaxDetectors is the detector ID space reserved per exposure when
	// computing detector-exposure IDs.
	MaxDetectors = 1000
)

// Camera resolves the imsim policy file against an installation root
// and exposes the detector ID helpers with the imsim conventions baked
// in.  The zero value is not useful; use New.
type Camera struct {
	// Root is the installation root directory the policy path is
	// resolved against.
	Root string
}

// New returns a Camera rooted at the given installation directory.
func New(root string) Camera {
	return Camera{Root: root}
}

// Name returns the camera name.
func (c Camera) Name() string {
	return CameraName
}

// PolicyPath returns the path of the camera policy file under the root.
func (c Camera) PolicyPath() string {
	return filepath.Join(c.Root, filepath.FromSlash(PolicyFile))
}

// DetectorIDs reads the policy file and returns the mapping from full
// detector name to integer detector number.
func (c Camera) DetectorIDs() (map[string]int, error) {
	return translate.ReadDetectorIDs(c.PolicyPath())
}

// Detectors loads the full camera description from the policy file.
func (c Camera) Detectors() (policy.Camera, error) {
	return policy.Load(c.PolicyPath())
}

// DetectorExposureID combines an exposure ID and detector number using
// the imsim convention: concatenation with space for MaxDetectors
// detectors.
func (c Camera) DetectorExposureID(exposureID int64, detectorNum int) (int64, error) {
	return translate.ComputeDetectorExposureID(exposureID, detectorNum, MaxDetectors, translate.ModeConcat)
}
