package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/handler"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/server"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := newBuildInfo()

	log := logger.NewLogger("money-keeper-server")

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(os.Args[2:], log); err != nil {
			log.Fatal().Err(err).Msg("error issuing token")
		}
		return
	}

	printBuildInfo(buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.Log.Level != "" {
		if err = logger.SetLevel(cfg.Log.Level); err != nil {
			log.Fatal().Err(err).Msg("invalid log level")
		}
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, *cfg, log)
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

// issueToken signs a bearer token for a user id. Tokens are issued out of
// band; the server itself only verifies them.
//
//	money-keeper-server token -user 42
func issueToken(args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.Int64("user", 0, "user id the token is issued for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	appCfg, err := config.GetAppConfig()
	if err != nil {
		return fmt.Errorf("error getting token configs: %w", err)
	}

	token, err := service.NewAuthService(*appCfg, log).CreateToken(context.Background(), *userID)
	if err != nil {
		return err
	}

	fmt.Println(token.SignedString)
	return nil
}

func newBuildInfo() models.AppBuildInfo {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}
	return models.NewAppBuildInfo(orNA(buildVersion), orNA(buildDate), orNA(buildCommit))
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
