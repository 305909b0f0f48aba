package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strawlab/vmbc-go/config"
	"github.com/strawlab/vmbc-go/internal/version"
	"github.com/strawlab/vmbc-go/pkg/vmb"
)

type VersionOptions struct {
	OutputFormat string
}

func NewVersionCommand() *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print client and Vmb API version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteVersion(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFormat, "format", "f", "text", "Output format (json or text)")

	return cmd
}

func ExecuteVersion(cmd *cobra.Command, opts *VersionOptions) error {
	info := version.ClientInfo()

	// The client version is useful without the SDK, so a failure to reach the
	// API is reported in the output rather than as an error.
	api := "unavailable"
	err := withSession(func(sess *vmb.Session) error {
		v, err := sess.Version()
		if err != nil {
			return err
		}
		api = v.String()
		return nil
	})
	if err != nil {
		logger().Debug("failed to query API version", "error", err)
		api = fmt.Sprintf("unavailable (%s)", describeError(err))
	}
	info["APIVersion"] = api
	info["ConfigFile"] = config.ConfigFile()

	out := cmd.OutOrStdout()
	if opts.OutputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintln(out, "Client:")
	fmt.Fprintf(out, "  Version:      %s\n", info["Version"])
	fmt.Fprintf(out, "  Go version:   %s\n", info["GoVersion"])
	fmt.Fprintf(out, "  Git commit:   %s\n", info["GitCommit"])
	fmt.Fprintf(out, "  Built:        %s\n", info["FormattedTime"])
	fmt.Fprintf(out, "  OS/Arch:      %s/%s\n", info["OS"], info["Arch"])
	if info["ConfigFile"] != "" {
		fmt.Fprintf(out, "  Config:       %s\n", info["ConfigFile"])
	}
	fmt.Fprintln(out, "API:")
	fmt.Fprintf(out, "  Generation:   %s\n", info["SDK"])
	fmt.Fprintf(out, "  Version:      %s\n", info["APIVersion"])
	return nil
}
