package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd(deps *Deps, version string) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{annotationNoSession: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(deps.Out, "bookreview version %s\n", version)
		},
	}
}
