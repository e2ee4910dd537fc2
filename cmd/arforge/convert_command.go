package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"arforge/internal/daemon"
	"arforge/internal/jobs"
	"arforge/internal/logging"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var name string
	var showLogs bool

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a model file and publish it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			inputPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Start(cmd.Context()); err != nil {
				return err
			}
			defer d.Stop()

			submitted, err := d.Pipeline().Submit(cmd.Context(), name, inputPath)
			if err != nil {
				return err
			}

			final, err := waitForJob(cmd, d, submitted.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showLogs {
				for _, line := range final.Logs {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)
			}

			if final.Status != jobs.StatusComplete {
				return fmt.Errorf("conversion failed: %s", final.Error)
			}

			rows := [][]string{
				{"Model ID", final.ModelID},
				{"GLB", final.Outputs.GLB},
				{"USDZ", final.Outputs.USDZ},
				{"Thumbnail", final.Outputs.Thumbnail},
				{"Short link", final.ShortLink},
				{"QR code", final.QRCodeURL},
			}
			if final.Metadata != nil {
				rows = append(rows,
					[]string{"Vertices", fmt.Sprintf("%d", final.Metadata.Vertices)},
					[]string{"Triangles", fmt.Sprintf("%d", final.Metadata.Triangles)},
					[]string{"Textures", fmt.Sprintf("%d", final.Metadata.Textures)},
					[]string{"Size", fmt.Sprintf("%d bytes", final.Metadata.FileSizeBytes)},
				)
				var degraded []string
				if final.Metadata.DegradedUSDZ {
					degraded = append(degraded, "usdz")
				}
				if final.Metadata.DegradedThumbnail {
					degraded = append(degraded, "thumbnail")
				}
				if len(degraded) > 0 {
					rows = append(rows, []string{"Degraded", strings.Join(degraded, ", ")})
				}
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name for the model (defaults to the file name)")
	cmd.Flags().BoolVar(&showLogs, "logs", false, "Print the processing log before the summary")
	return cmd
}

func waitForJob(cmd *cobra.Command, d *daemon.Daemon, jobID string) (jobs.Snapshot, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			_ = d.Pipeline().Cancel(jobID)
			return jobs.Snapshot{}, cmd.Context().Err()
		case <-ticker.C:
			snapshot, ok := d.Pipeline().Registry().Snapshot(jobID)
			if !ok {
				return jobs.Snapshot{}, fmt.Errorf("job %s disappeared", jobID)
			}
			if snapshot.Status.Terminal() {
				return snapshot, nil
			}
		}
	}
}
