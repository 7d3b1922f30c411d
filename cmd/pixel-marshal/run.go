package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/pixel-marshal/internal/imageio"
	"github.com/ironsheep/pixel-marshal/internal/invoke"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

type outputFlags struct {
	dir string
	raw bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dir, "out", "", "output directory (config output.dir)")
	cmd.Flags().BoolVar(&o.raw, "raw", false, "write .pxmr snapshots instead of PNG")
}

func (o *outputFlags) resolve(a *app) string {
	if o.dir != "" {
		return o.dir
	}
	return a.cfg.Output.Dir
}

// printList reports the written files of a result list, one per line.
func printList(cmd *cobra.Command, images []*pixel.Buffer, names []string, paths []string) {
	for i, buf := range images {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%dx%dx%dx%d\t%s\n",
			names[i], buf.Width(), buf.Height(), buf.Depth(), buf.Spectrum(), paths[i])
	}
}

func newRunCommand(a *app) *cobra.Command {
	var (
		names []string
		out   outputFlags
	)

	cmd := &cobra.Command{
		Use:   "run COMMAND [FILE...]",
		Short: "Run one engine command over a list of images",
		Long: `Load every FILE (PNG, JPEG, GIF, BMP, TIFF or .pxmr snapshot) into one
list, run COMMAND over it and write every resulting image to the output
directory, named after the resulting image names.`,
		Example: `  pixel-marshal run "reverse dup[0]" a.png b.png --out results
  pixel-marshal run "new 64,64,1,3,128 name[0] gray" --raw`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, files := args[0], args[1:]

			images, loaded, err := imageio.NewCache().LoadAll(files)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("names") {
				loaded = names
			}

			if err := invoke.Run(a.engineFactory(), command, &images, &loaded); err != nil {
				return err
			}

			paths, err := imageio.WriteList(out.resolve(a), images, loaded, out.raw)
			if err != nil {
				return err
			}
			a.logger.Debug("run finished", zap.String("command", command), zap.Int("images", len(images)))
			printList(cmd, images, loaded, paths)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&names, "names", nil, "names for the input images (default: file names)")
	out.register(cmd)
	return cmd
}

func newBatchCommand(a *app) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "batch COMMAND FILE...",
		Short: "Run one engine command over each image separately, in parallel",
		Long: `Run COMMAND once per FILE, each on its own single-image list, using a pool
of engine instances (config pool.size). Results go to one subdirectory of the
output directory per input file. A failing file does not stop the others.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, files := args[0], args[1:]
			cache := imageio.NewCache()

			lists := make([][]*pixel.Buffer, len(files))
			names := make([][]string, len(files))
			jobs := make([]invoke.Job, len(files))
			for i, f := range files {
				buf, err := cache.Load(f)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				lists[i] = []*pixel.Buffer{buf}
				names[i] = []string{imageio.NameFromPath(f)}
				jobs[i] = invoke.Job{Command: command, Images: &lists[i], Names: &names[i]}
			}

			pool := invoke.NewPool(a.engineFactory(), a.cfg.Pool.Size)
			errs, err := pool.RunBatch(cmd.Context(), jobs)
			if err != nil {
				return err
			}

			failed := 0
			for i, f := range files {
				if errs[i] != nil {
					failed++
					a.logger.Error("batch item failed", zap.String("file", f), zap.Error(errs[i]))
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", f, errs[i])
					continue
				}
				dir := filepath.Join(out.resolve(a), imageio.NameFromPath(f))
				paths, err := imageio.WriteList(dir, lists[i], names[i], out.raw)
				if err != nil {
					return err
				}
				printList(cmd, lists[i], names[i], paths)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}

	out.register(cmd)
	return cmd
}
