package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/strawlab/vmbc-go/internal/util"
	"github.com/strawlab/vmbc-go/pkg/vmb"
)

type ListOptions struct {
	OutputFormat string
}

func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List connected cameras",
		Example: `  vmbc list
  vmbc list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteList(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.OutputFormat, "format", "f", "text", "Output format (json or text)")

	cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "text"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func ExecuteList(cmd *cobra.Command, opts *ListOptions) error {
	if opts.OutputFormat != "json" && opts.OutputFormat != "text" {
		return fmt.Errorf("invalid output format %q (want json or text)", opts.OutputFormat)
	}

	var cameras []vmb.CameraInfo
	err := withSession(func(sess *vmb.Session) error {
		var err error
		cameras, err = sess.Cameras()
		return err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.OutputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cameras)
	}

	if len(cameras) == 0 {
		fmt.Fprintln(out, "No cameras found")
		return nil
	}

	columns := []util.TableColumn{
		{Header: "ID", Key: "id"},
		{Header: "NAME", Key: "name"},
		{Header: "MODEL", Key: "model"},
		{Header: "SERIAL", Key: "serial"},
		{Header: "ACCESS", Key: "access"},
	}
	data := make([]map[string]interface{}, 0, len(cameras))
	for _, c := range cameras {
		data = append(data, map[string]interface{}{
			"id":     color.New(color.FgCyan).Sprint(c.ID),
			"name":   c.Name,
			"model":  c.Model,
			"serial": c.Serial,
			"access": c.PermittedAccess.String(),
		})
	}
	util.RenderTable(out, columns, data)
	return nil
}
