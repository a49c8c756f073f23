// Package server contains shared HTTP plumbing for the observation
// metadata services.
package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"goji.io"
	"goji.io/pat"
)

// RouteTable maps URL patterns to the handlers that serve them.
type RouteTable map[*pat.Pattern]http.HandlerFunc

// ListEndpoints lists the patterns in a RouteTable (the keys).
func (rt RouteTable) ListEndpoints() []string {
	routes := make([]string, 0, len(rt))
	for p := range rt {
		routes = append(routes, p.String())
	}
	sort.Strings(routes)
	return routes
}

// Bind attaches every route in the table to the mux.  It also binds a
// special route, route-list, which returns the table's patterns as JSON.
func (rt RouteTable) Bind(mux *goji.Mux) {
	for p, handler := range rt {
		mux.HandleFunc(p, handler)
	}
	mux.HandleFunc(pat.Get("/route-list"), func(w http.ResponseWriter, r *http.Request) {
		EncodeJSON(w, rt.ListEndpoints())
	})
}

// HTTPer is an object which exposes a route table over HTTP.
type HTTPer interface {
	RT() RouteTable
}

// EncodeJSON writes v to w as JSON with the appropriate content type,
// converting encoding failures into a 500.
func EncodeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
