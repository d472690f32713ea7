// Package web serves the embedded browser client. The API base URL is a
// build-time value: override it with
//
//	go build -ldflags "-X kubetodo/web.APIBase=http://host:port" ./cmd/web
//
// Setting it at runtime has no effect on an already-built binary; the
// deploy manifests document this constraint.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIBase is baked at build time. Empty means same-origin requests.
var APIBase = ""

//go:embed static
var staticFS embed.FS

//go:embed index.html.tmpl
var indexTemplate string

// Register mounts the client on the router: the templated index page at /
// and the embedded assets under /static.
func Register(router *gin.Engine) error {
	tmpl, err := template.New("index").Parse(indexTemplate)

	if err != nil {
		return err
	}

	router.SetHTMLTemplate(tmpl)

	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index", gin.H{"APIBase": APIBase})
	})

	assets, err := fs.Sub(staticFS, "static")

	if err != nil {
		return err
	}

	router.StaticFS("/static", http.FS(assets))

	return nil
}
