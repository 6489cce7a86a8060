package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/uber-go/tally"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/floodwatch-blr/flood-api/api"
	"github.com/floodwatch-blr/flood-api/dataset"
	"github.com/floodwatch-blr/flood-api/external/openmeteo"
	"github.com/floodwatch-blr/flood-api/external/openweather"
	"github.com/floodwatch-blr/flood-api/prediction"
)

var server *api.Server

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("floodapi")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.port", "8000")
	viper.SetDefault("dataset.path", "./ward_drainage_analysis.csv")

	// Bengaluru city center, the shared reference point for batch mode.
	viper.SetDefault("city.latitude", 12.9716)
	viper.SetDefault("city.longitude", 77.5946)
}

func main() {
	var configFile string

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Server is preparing to shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if server != nil {
			log.Info("Shutdown api server")
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Server Shutdown:", err)
			}
		}

		os.Exit(1)
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "floodapi",
		Reporter: tally.NullStatsReporter,
	}, time.Second)
	defer scopeCloser.Close()

	store := dataset.NewCSVStore(viper.GetString("dataset.path"))

	clock := clockwork.NewRealClock()
	meteoClient := openmeteo.New(
		viper.GetString("openmeteo.forecast_url"),
		viper.GetString("openmeteo.archive_url"),
		clock,
	)
	owmClient := openweather.New(
		viper.GetString("openweather.key"),
		viper.GetString("openweather.url"),
	)
	log.WithField("prefix", "init").Info("Initialized weather provider clients")

	predictor := prediction.New(
		store,
		meteoClient,
		owmClient,
		clock,
		scope,
		viper.GetFloat64("city.latitude"),
		viper.GetFloat64("city.longitude"),
	)

	// Init http server
	server = api.NewServer(store, predictor)
	log.WithField("prefix", "init").Info("Initialized http server")

	log.Fatal(server.Run(":" + viper.GetString("server.port")))
}
