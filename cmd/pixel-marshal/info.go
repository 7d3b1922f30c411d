package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/ironsheep/pixel-marshal/internal/bridge"
	"github.com/ironsheep/pixel-marshal/internal/convert"
	"github.com/ironsheep/pixel-marshal/internal/imageio"
)

// fileReport is the YAML document printed by info for each file.
type fileReport struct {
	Path     string `yaml:"path"`
	Format   string `yaml:"format"`
	Bytes    int64  `yaml:"file_size_bytes"`
	Buffer   string `yaml:"buffer"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Depth    int    `yaml:"depth"`
	Spectrum int    `yaml:"spectrum"`
	Export   struct {
		Preset string `yaml:"preset"`
		Shape  []int  `yaml:"shape,flow"`
		DType  string `yaml:"dtype"`
	} `yaml:"export"`
}

func newInfoCommand(a *app) *cobra.Command {
	var (
		preset string
		dtype  string
	)

	cmd := &cobra.Command{
		Use:   "info FILE...",
		Short: "Describe the pixel buffer and exported array shape of image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if preset == "" {
				preset = a.cfg.Bridge.Preset
			}
			dt, err := convert.ParseDType(dtype)
			if err != nil {
				return err
			}

			cache := imageio.NewCache()
			for _, path := range args {
				info, err := imageio.LoadInfo(cache, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				buf, err := cache.Load(path)
				if err != nil {
					return err
				}
				arr, err := bridge.ToPreset(buf, preset, convert.WithDType(dt))
				if err != nil {
					return err
				}

				r := fileReport{
					Path:     path,
					Format:   info.Format,
					Bytes:    info.FileSizeBytes,
					Buffer:   info.Buffer,
					Width:    info.Width,
					Height:   info.Height,
					Depth:    info.Depth,
					Spectrum: info.Spectrum,
				}
				r.Export.Preset = preset
				r.Export.Shape = arr.Shape
				r.Export.DType = arr.DType.String()

				data, err := yaml.Marshal([]fileReport{r})
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", fmt.Sprintf("conversion preset, one of %v (config bridge.preset)", bridge.Names()))
	cmd.Flags().StringVar(&dtype, "dtype", "float32", "element type of the exported array")
	return cmd
}
