package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/handler"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/server"
	"github.com/MKhiriev/notesync/internal/service"
	"github.com/MKhiriev/notesync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(info)

	log := logger.NewLogger("notesync-server")

	fs := pflag.NewFlagSet("notesync-server", pflag.ExitOnError)
	flags := config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.GetServerConfig(flags.Config())
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if info.BuildVersion() != "" {
		cfg.App.Version = info.BuildVersion()
	}

	log.Debug().Str("address", cfg.Server.HTTPAddress).Str("root", cfg.Server.RootDir).Msg("received configs")

	services, err := service.NewServices(*cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}
