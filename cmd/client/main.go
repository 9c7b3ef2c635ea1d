package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-money-keeper/internal/client"
	"github.com/MKhiriev/go-money-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cmd := client.NewRootCommand(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(client.ExitCode(err))
	}
}
