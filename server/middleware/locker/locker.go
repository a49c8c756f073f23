// Package locker provides an HTTP middleware which allows a handler tree
// to be locked, returning 423 (locked).  Operators lock the metadata
// service while a camera policy is being swapped out so that no request
// sees a half-updated installation root.
package locker

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lsst-sims/imsimobs/server"

	"goji.io/pat"
)

// Inject adds a lock route to a server.HTTPer which is used to
// manipulate the locker.
func Inject(other server.HTTPer, l *Locker) {
	rt := other.RT()
	rt[pat.Get("/lock")] = l.HTTPGet
	rt[pat.Post("/lock")] = l.HTTPSet
}

// Locker is a type which behaves like a sync.Mutex without the blocking,
// and holds a list of routes to not protect.
type Locker struct {
	isLocked bool

	// DoNotProtect is a list of paths not to apply the lock to
	DoNotProtect []string
}

// New returns a new Locker with DoNotProtect prepopulated with "lock".
func New() *Locker {
	return &Locker{DoNotProtect: []string{"lock"}}
}

// Lock the locker.
func (l *Locker) Lock() {
	l.isLocked = true
}

// Unlock the locker.
func (l *Locker) Unlock() {
	l.isLocked = false
}

// Locked returns true if the locker is locked.
func (l *Locker) Locked() bool {
	return l.isLocked
}

// Check is an HTTP middleware that returns http.StatusLocked if Locked()
// is true, otherwise passes down the line.
func (l *Locker) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Locked() {
			// check if the path is protected
			protected := true
			url := r.URL.Path
			for _, str := range l.DoNotProtect {
				if strings.Contains(url, str) {
					protected = false
				}
			}
			// if it is, bounce the request - locked
			if protected {
				w.WriteHeader(http.StatusLocked)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type boolT struct {
	Bool bool `json:"bool"`
}

// HTTPSet calls Lock or Unlock based on json:bool on the request body.
func (l *Locker) HTTPSet(w http.ResponseWriter, r *http.Request) {
	b := boolT{}
	err := json.NewDecoder(r.Body).Decode(&b)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.Bool {
		l.Lock()
	} else {
		l.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

// HTTPGet returns the lock state as json:bool.
func (l *Locker) HTTPGet(w http.ResponseWriter, r *http.Request) {
	server.EncodeJSON(w, boolT{Bool: l.Locked()})
}
