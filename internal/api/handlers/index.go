package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexPage []byte

// Index serves the upload page. The full visual frontend ships separately;
// this page is enough to drive the API from a browser.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}
