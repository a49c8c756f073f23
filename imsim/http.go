package imsim

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/astrogo/fitsio"
	"goji.io/pat"

	"github.com/lsst-sims/imsimobs/server"
	"github.com/lsst-sims/imsimobs/translate"
)

// HTTPWrapper exposes a Camera and its Translator over HTTP.
type HTTPWrapper struct {
	// Cam is the camera being served
	Cam Camera

	tr *Translator
	rt server.RouteTable
}

// NewHTTPWrapper loads the camera's detector table and returns a
// wrapper ready to bind.
func NewHTTPWrapper(cam Camera) (*HTTPWrapper, error) {
	tr, err := NewTranslator(cam)
	if err != nil {
		return nil, err
	}
	w := &HTTPWrapper{Cam: cam, tr: tr}
	w.rt = server.RouteTable{
		pat.Get("/camera"):               w.GetCamera,
		pat.Get("/detectors"):            w.GetDetectors,
		pat.Get("/detector-exposure-id"): w.GetDetectorExposureID,
		pat.Post("/visit-info"):          w.PostVisitInfo,
	}
	return w, nil
}

// RT satisfies server.HTTPer.
func (h *HTTPWrapper) RT() server.RouteTable {
	return h.rt
}

// cameraT is the summary served on /camera.
type cameraT struct {
	Name       string  `json:"name"`
	PlateScale float64 `json:"plateScale"`
	Detectors  int     `json:"detectors"`
}

// GetCamera serves a summary of the camera description.
func (h *HTTPWrapper) GetCamera(w http.ResponseWriter, r *http.Request) {
	cam, err := h.Cam.Detectors()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	server.EncodeJSON(w, cameraT{
		Name:       cam.Name,
		PlateScale: cam.PlateScale,
		Detectors:  len(cam.CCDs),
	})
}

// GetDetectors serves the detector name to ID table as JSON.
func (h *HTTPWrapper) GetDetectors(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Cam.DetectorIDs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	server.EncodeJSON(w, ids)
}

// idT is the response shape for detector-exposure IDs.
type idT struct {
	ID int64 `json:"id"`
}

// GetDetectorExposureID computes the combined ID from exposure and
// detector query parameters.  max and mode may override the imsim
// defaults.
func (h *HTTPWrapper) GetDetectorExposureID(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expID, err := strconv.ParseInt(q.Get("exposure"), 10, 64)
	if err != nil {
		http.Error(w, "exposure query parameter must be an integer", http.StatusBadRequest)
		return
	}
	detNum, err := strconv.Atoi(q.Get("detector"))
	if err != nil {
		http.Error(w, "detector query parameter must be an integer", http.StatusBadRequest)
		return
	}
	maxNum := MaxDetectors
	if s := q.Get("max"); s != "" {
		maxNum, err = strconv.Atoi(s)
		if err != nil {
			http.Error(w, "max query parameter must be an integer", http.StatusBadRequest)
			return
		}
	}
	mode := translate.ModeConcat
	if s := q.Get("mode"); s != "" {
		mode = translate.Mode(s)
	}
	id, err := translate.ComputeDetectorExposureID(expID, detNum, maxNum, mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	server.EncodeJSON(w, idT{ID: id})
}

// visitInfoT is the response shape for translated headers.
type visitInfoT struct {
	ObservationInfo
	DetectorExposureID int64 `json:"detectorExposureId"`
}

// PostVisitInfo accepts a raw FITS file as the request body and serves
// the translated observation metadata.
func (h *HTTPWrapper) PostVisitInfo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fits, err := fitsio.Open(bytes.NewReader(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer fits.Close()
	cards := PrimaryHeader(fits)
	id, info, err := h.tr.DetectorExposureID(cards)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	server.EncodeJSON(w, visitInfoT{ObservationInfo: info, DetectorExposureID: id})
}

// PrimaryHeader collects the cards of a FITS file's primary HDU.
func PrimaryHeader(fits *fitsio.File) []fitsio.Card {
	hdr := fits.HDU(0).Header()
	keys := hdr.Keys()
	cards := make([]fitsio.Card, 0, len(keys))
	for _, key := range keys {
		c := hdr.Get(key)
		if c != nil {
			cards = append(cards, *c)
		}
	}
	return cards
}
