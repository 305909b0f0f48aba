package cmd

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strawlab/vmbc-go/internal/util"
	"github.com/strawlab/vmbc-go/pkg/vmb"
)

var featureTypes = []string{"auto", "int", "float", "bool", "enum", "string"}

var defaultFeatures = []string{
	vmb.FeatureDeviceFirmwareVersion,
	vmb.FeaturePixelFormat,
	vmb.FeaturePayloadSize,
	vmb.FeatureWidth,
	vmb.FeatureHeight,
}

type FeaturesOptions struct {
	Type         string
	OutputFormat string
}

func NewFeaturesCommand() *cobra.Command {
	opts := &FeaturesOptions{}

	cmd := &cobra.Command{
		Use:   "features <camera> [feature...]",
		Short: "Read camera features",
		Long: `Read features of a camera by name. Without feature names the firmware version,
pixel format, payload size and image size are shown. With --type auto every
accessor is tried until one matches the feature's type.`,
		Example: `  vmbc features DEV_000F315B1234
  vmbc features DEV_000F315B1234 ExposureTime Gain --type float`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args[1:]
			if len(names) == 0 {
				names = defaultFeatures
			}
			return ExecuteFeatures(cmd, args[0], names, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Type, "type", "auto", "Feature type (auto, int, float, bool, enum or string)")
	flags.StringVarP(&opts.OutputFormat, "format", "f", "text", "Output format (json or text)")

	cmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return featureTypes, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type featureValue struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

func ExecuteFeatures(cmd *cobra.Command, cameraID string, names []string, opts *FeaturesOptions) error {
	if !slices.Contains(featureTypes, opts.Type) {
		return fmt.Errorf("invalid feature type %q", opts.Type)
	}

	var values []featureValue
	err := withSession(func(sess *vmb.Session) (err error) {
		cam, err := sess.OpenCameraByID(cameraID, vmb.AccessModeRead)
		if err != nil {
			return err
		}
		defer func() {
			firstError(&err, cam.Close(), "close camera")
		}()

		for _, name := range names {
			v, err := readFeature(cam, name, opts.Type)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		return nil
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.OutputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}

	data := make([]map[string]interface{}, 0, len(values))
	for _, v := range values {
		data = append(data, map[string]interface{}{"name": v.Name, "type": v.Type, "value": v.Value})
	}
	util.RenderTable(out, []util.TableColumn{
		{Header: "FEATURE", Key: "name"},
		{Header: "TYPE", Key: "type"},
		{Header: "VALUE", Key: "value"},
	}, data)
	return nil
}

func readFeature(cam *vmb.Camera, name, typ string) (featureValue, error) {
	if typ != "auto" {
		v, err := readTyped(cam, name, typ)
		if err != nil {
			return featureValue{}, err
		}
		return featureValue{Name: name, Type: typ, Value: v}, nil
	}

	for _, t := range featureTypes[1:] {
		v, err := readTyped(cam, name, t)
		if errors.Is(err, vmb.ErrTypeMismatch) {
			continue
		}
		if err != nil {
			return featureValue{}, err
		}
		return featureValue{Name: name, Type: t, Value: v}, nil
	}
	return featureValue{}, errors.Wrapf(vmb.ErrTypeMismatch, "feature %s has no readable type", strconv.Quote(name))
}

func readTyped(cam *vmb.Camera, name, typ string) (any, error) {
	switch typ {
	case "int":
		return cam.FeatureInt(name)
	case "float":
		return cam.FeatureFloat(name)
	case "bool":
		return cam.FeatureBool(name)
	case "enum":
		return cam.FeatureEnum(name)
	case "string":
		return cam.FeatureString(name)
	}
	return nil, fmt.Errorf("invalid feature type %q", typ)
}
