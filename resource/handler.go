// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

// Handler serves issued resources. Mount it with http.StripPrefix so the
// remaining path is the handle ID:
//
//	GET    /{id}  returns the bytes with the handle's MIME type
//	HEAD   /{id}  same headers, no body
//	DELETE /{id}  releases the handle
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := strings.Trim(req.URL.Path, "/")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, req)
			return
		}

		switch req.Method {
		case http.MethodGet, http.MethodHead:
			data, h, err := r.Open(id)
			if err != nil {
				http.NotFound(w, req)
				return
			}

			w.Header().Set("Content-Type", h.MIME)
			http.ServeContent(w, req, h.ID, h.Created, bytes.NewReader(data))

		case http.MethodDelete:
			if err := r.Release(id); err != nil {
				if errors.Is(err, ErrNotFound) {
					http.NotFound(w, req)
					return
				}
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			w.Header().Set("Allow", "GET, HEAD, DELETE")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
