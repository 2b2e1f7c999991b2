package configuration

import (
	"time"

	"github.com/tidewatch/tidewatch/internal/common/auth/configuration"
)

type TidewatchConfig struct {
	Auth configuration.AuthConfig

	HttpPort    uint16
	MetricsPort uint16

	CorsAllowedOrigins []string

	Source SourceConfiguration
}

type SourceConfiguration struct {
	// Location of the jobs spreadsheet.
	Path string
	// Sheet to read. Empty means the workbook's first sheet.
	SheetName string
	// How often to reload the spreadsheet. Zero disables periodic reloads.
	PollInterval time.Duration
	// Reload when the file changes on disk.
	Watch bool
	// Quiet period applied to bursts of file change events.
	DebounceInterval time.Duration
}
