package main

import (
	"context"
	"os"

	"github.com/MKhiriev/notesync/internal/cli"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cli.SetBuildInfo(buildVersion, buildDate, buildCommit)

	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		os.Exit(1)
	}
}
