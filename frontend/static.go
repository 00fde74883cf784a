// Package static provides the embedded page templates and stylesheet
package static

import "embed"

// FS contains the page templates and static assets
//
//go:embed all:templates all:assets
var FS embed.FS
