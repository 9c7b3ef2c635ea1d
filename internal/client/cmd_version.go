package client

import (
	"fmt"
	"io"

	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/spf13/cobra"
)

type versionView struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

func newVersionCommand(opts *RootOptions, info models.AppBuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := versionView{
				Version: orNA(info.BuildVersion()),
				Date:    orNA(info.BuildDate()),
				Commit:  orNA(info.BuildCommit()),
			}
			return opts.printer(cmd).print(v, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n", v.Version, v.Date, v.Commit)
				return err
			})
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
