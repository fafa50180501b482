// Package web holds the HTML templates served by the pricing server.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
