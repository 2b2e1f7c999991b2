package permissions

import (
	"github.com/tidewatch/tidewatch/internal/common/auth/permission"
)

const (
	ViewJobs    permission.Permission = "view_jobs"
	RefreshJobs permission.Permission = "refresh_jobs"
	ExportJobs  permission.Permission = "export_jobs"
)
