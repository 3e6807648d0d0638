package engine

import (
	"net/http"
	"os"
	"strings"

	"github.com/getmockd/mockhost/pkg/httputil"
	"github.com/getmockd/mockhost/pkg/util"
)

// StaticPrefix is the URL prefix served from the image directory.
const StaticPrefix = "/images/"

// serveStatic serves files under the config's image directory. Only GET is
// allowed; OPTIONS is a preflight when CORS is enabled. Names that resolve
// outside the directory are treated as missing.
func (s *Server) serveStatic(rc *requestContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handlePreflight(rc, w, r) {
			return
		}
		if r.Method != http.MethodGet {
			httputil.WriteMethodNotAllowed(w, http.MethodGet)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, StaticPrefix)
		full, ok := util.ResolveUnder(rc.cfg.ImageDir, name)
		if !ok {
			http.NotFound(w, r)
			return
		}

		f, err := os.Open(full)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		// ServeContent infers the type from the extension, then sniffs.
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
