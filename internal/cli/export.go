package cli

import (
	"time"

	"github.com/rocjay1/finpulse/internal/aggregate"
	"github.com/spf13/cobra"
)

var timeNow = time.Now

func (cli *CLI) newExportCmd() *cobra.Command {
	opts := &sourceOptions{}
	var output string
	var toBlob bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the session's transactions as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.file = args[0]
			}

			cfg, log, err := cli.loadConfig(true)
			if err != nil {
				return err
			}
			ctx := log.WithContext(cmd.Context())

			sess, err := newSession(ctx, cfg, opts.apply(cfg.Settings()), log)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := populate(ctx, sess, opts, log); err != nil {
				return err
			}

			if toBlob {
				blob, err := sess.ArchiveExport(ctx)
				if err != nil {
					return err
				}
				log.Info().Str("blob_name", blob).Msg("export archived")
				return nil
			}

			if output == "" {
				output = aggregate.ExportFilename(timeNow())
			}
			w, closeFn, err := openOutput(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if _, err := sess.ExportCSV(w); err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			log.Info().Str("output", output).Int("count", len(sess.Transactions())).Msg("exported transactions")
			return nil
		},
	}

	addSourceFlags(cmd, opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output path, "-" for stdout (default report_<date>.csv)`)
	cmd.Flags().BoolVar(&toBlob, "blob", false, "Store the export in blob storage instead of a file")
	return cmd
}
