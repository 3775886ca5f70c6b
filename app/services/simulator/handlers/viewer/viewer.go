// Package viewer serves the page that follows the block events of the
// running network in a browser.
package viewer

import (
	"context"
	_ "embed"
	"net/http"
)

//go:embed index.html
var index []byte

// Index writes the viewer page.
func Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(index)
	return err
}
