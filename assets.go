// Package careconnect embeds the web templates served by the portal.
package careconnect

import "embed"

//go:embed all:web/templates
var TemplateFS embed.FS
