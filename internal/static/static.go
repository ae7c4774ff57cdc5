// Package static serves the upload page and its assets.
package static

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aura-webinar/meeting-transcriber/pkg/response"
)

// Handler serves files under dir for any GET that matched no API route. "/"
// maps to index.html; anything missing is a 404.
func Handler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.NotFound(c, "Not found")
			return
		}
		name := path.Clean("/" + c.Request.URL.Path)
		if name == "/" {
			name = "/index.html"
		}
		if strings.HasPrefix(name, "/api/") {
			response.NotFound(c, "Not found")
			return
		}
		file := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(name, "/")))
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			response.NotFound(c, "Not found")
			return
		}
		c.File(file)
	}
}
