package cli

import (
	"github.com/spf13/cobra"

	"github.com/MKhiriev/notesync/models"
)

var buildInfo = models.NewAppBuildInfo("", "", "")

// SetBuildInfo records the values injected with -ldflags; empty ones print
// as "N/A".
func SetBuildInfo(version, date, commit string) {
	buildInfo = models.NewAppBuildInfo(version, date, commit)
}

func newVersionCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// no local store needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			for _, f := range buildInfo.Fields() {
				rt.print.row(f.Label, f.Value)
			}
		},
	}
}
