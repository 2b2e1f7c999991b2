package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tidewatch/tidewatch/internal/common"
	"github.com/tidewatch/tidewatch/internal/tidewatch"
	"github.com/tidewatch/tidewatch/internal/tidewatch/configuration"
)

const CustomConfigLocation string = "config"

func init() {
	pflag.StringSlice(
		CustomConfigLocation,
		[]string{},
		"Path to application configuration file (repeat the flag or comma-separate paths for multiple files)",
	)
	pflag.Parse()
}

func main() {
	common.ConfigureLogging()
	common.BindCommandlineArguments()

	// A .env file next to the binary may supply TIDEWATCH_* overrides.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("error loading .env file")
	}

	var config configuration.TidewatchConfig
	userSpecifiedConfigs := viper.GetStringSlice(CustomConfigLocation)
	common.LoadConfig(&config, "./config/tidewatch", userSpecifiedConfigs)

	if err := config.Validate(); err != nil {
		log.Errorf("Invalid config: %s", err)
		os.Exit(-1)
	}

	log.Info("Starting tidewatch...")

	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)

	shutdownMetricServer := common.ServeMetrics(config.MetricsPort)
	defer shutdownMetricServer()

	shutdown, wg := tidewatch.StartUp(&config)
	go func() {
		<-stopSignal
		shutdown()
	}()
	wg.Wait()
}
