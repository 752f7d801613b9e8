package cli

import (
	"github.com/rocjay1/finpulse/internal/render"
	"github.com/spf13/cobra"
)

func addSourceFlags(cmd *cobra.Command, opts *sourceOptions) {
	cmd.Flags().BoolVar(&opts.local, "local", false, "Parse the file as an exported CSV locally instead of uploading it")
	cmd.Flags().StringVar(&opts.restore, "restore", "", "Restore a saved snapshot instead of reading a file")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Report language (en, es, fr, de, hi)")
	cmd.Flags().StringVarP(&opts.industry, "industry", "i", "", "Benchmark industry")
	cmd.Flags().StringVar(&opts.company, "company", "", "Company name sent with the report request")
}

func (cli *CLI) newAnalyzeCmd() *cobra.Command {
	opts := &sourceOptions{}
	var archive bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Upload transactions and print the financial health report",
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
			// Wait for the report triggered by loading.
			sess.Close()

			st := sess.Report()
			if st.Err != nil {
				return st.Err
			}

			if archive {
				if err := sess.Archive(ctx); err != nil {
					return err
				}
				log.Info().Str("snapshot", sess.Name()).Msg("session archived")
			}

			view := render.NewView(sess.Settings(), st.Result, sess.Transactions())
			return render.NewReporter(cmd.OutOrStdout()).Handle(view)
		},
	}

	addSourceFlags(cmd, opts)
	cmd.Flags().BoolVar(&archive, "archive", false, "Save the session snapshot to table storage")
	return cmd
}
