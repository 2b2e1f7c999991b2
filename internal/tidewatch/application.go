package tidewatch

import (
	"net/http"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tidewatch/tidewatch/internal/common"
	"github.com/tidewatch/tidewatch/internal/common/auth"
	"github.com/tidewatch/tidewatch/internal/common/health"
	"github.com/tidewatch/tidewatch/internal/common/task"
	"github.com/tidewatch/tidewatch/internal/common/util"
	"github.com/tidewatch/tidewatch/internal/tidewatch/configuration"
	"github.com/tidewatch/tidewatch/internal/tidewatch/metrics"
	"github.com/tidewatch/tidewatch/internal/tidewatch/repository"
	"github.com/tidewatch/tidewatch/internal/tidewatch/server"
	"github.com/tidewatch/tidewatch/internal/tidewatch/source"
)

func StartUp(config *configuration.TidewatchConfig) (func(), *sync.WaitGroup) {
	wg := &sync.WaitGroup{}
	wg.Add(1)

	clock := &util.SystemClock{}

	authServices, err := auth.ConfigureAuth(config.Auth, clock)
	if err != nil {
		log.Errorf("Failed to create auth services %s", err)
		os.Exit(-1)
	}

	// The login endpoint needs direct access to the credential store and the
	// token issuer, on top of the combined request authenticator.
	var basicAuthService *auth.BasicAuthService
	var jwtAuthService *auth.JwtAuthService
	for _, authService := range authServices {
		switch service := authService.(type) {
		case *auth.BasicAuthService:
			basicAuthService = service
		case *auth.JwtAuthService:
			jwtAuthService = service
		}
	}

	permissionsChecker := auth.NewPrincipalPermissionChecker(config.Auth.PermissionGroupMapping)

	reader := source.NewExcelRowReader(config.Source.Path, config.Source.SheetName)
	store := repository.NewJobStore(reader, clock)
	metrics.ExposeTidewatchMetrics(store)

	// A failed initial load is not fatal: the store degrades to an empty
	// snapshot and later reloads can recover.
	metrics.RecordReload(store.Reload())

	taskManager := task.NewBackgroundTaskManager(metrics.MetricPrefix)
	if config.Source.PollInterval > 0 {
		taskManager.Register(func() {
			metrics.RecordReload(store.Reload())
		}, config.Source.PollInterval, "source_reload")
	}

	var watcher *source.SourceWatcher
	if config.Source.Watch {
		watcher, err = source.StartSourceWatcher(config.Source.Path, config.Source.DebounceInterval, func() {
			metrics.RecordReload(store.Reload())
		})
		if err != nil {
			log.Errorf("Failed to watch jobs source %s", err)
			os.Exit(-1)
		}
	}

	jobsServer := server.NewJobsServer(
		store,
		config.Source.Path,
		config.CorsAllowedOrigins,
		auth.NewMultiAuthService(authServices),
		basicAuthService,
		jwtAuthService,
		permissionsChecker,
		clock,
	)

	// The kubernetes-style liveness probe shares the API port.
	mux := http.NewServeMux()
	startupComplete := health.NewStartupCompleteChecker()
	health.SetupHttpMux(mux, startupComplete)
	mux.Handle("/", jobsServer.Handler())
	shutdownServer := common.ServeHttp(config.HttpPort, mux)

	startupComplete.MarkComplete()

	shutdown := func() {
		if watcher != nil {
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("error closing source watcher")
			}
		}
		taskManager.StopAll(2 * time.Second)
		shutdownServer()
		wg.Done()
	}
	return shutdown, wg
}
