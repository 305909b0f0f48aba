package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/strawlab/vmbc-go/config"
	"github.com/strawlab/vmbc-go/internal/util"
	"github.com/strawlab/vmbc-go/internal/version"
	"github.com/strawlab/vmbc-go/pkg/vmb"
)

type RootOptions struct {
	LibPath string
	Verbose bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vmbc",
		Short: "Allied Vision camera tool",
		Long: `vmbc talks to Allied Vision cameras through the Vmb C API (Vimba X, or Vimba 5
when built with -tags vmb_legacy). It lists cameras, reads features and grabs
single frames.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.InitLogger(opts.Verbose)
			vmb.SetLogger(util.GetLogger())
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				color.NoColor = true
			}
			if opts.LibPath != "" {
				config.SetLibraryPath(opts.LibPath)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.LibPath, "lib", "", "Path to the Vmb shared library or its directory (default from VMBC_LIB_PATH or the SDK install location)")
	flags.BoolVarP(&opts.Verbose, "verbose", "V", false, "Enable debug logging")

	cmd.AddCommand(NewGrabCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewFeaturesCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return ExitCode(err)
}
