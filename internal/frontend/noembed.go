//go:build !embed

package frontend

import "net/http"

// Handler returns nil when the overlay UI was not compiled in; the
// server falls back to serving it from the filesystem.
func Handler() http.Handler {
	return nil
}
