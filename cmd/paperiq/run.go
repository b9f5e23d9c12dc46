package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/paperiq/dashboard/internal/dashboard"
	"github.com/paperiq/dashboard/internal/modulecard"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/session"
	"github.com/paperiq/dashboard/internal/upload"
	"github.com/spf13/cobra"
)

func runCmd(opts *globalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "run [steps...]",
		Short: "Run pipeline steps on a document",
		Long: "Runs the given steps (ingestion, preprocess, extract, summarize) in order.\n" +
			"Without steps the whole pipeline runs. The first failure stops the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := models.Steps
			if len(args) > 0 {
				steps = make([]models.Step, 0, len(args))
				for _, a := range args {
					s, err := models.ParseStep(a)
					if err != nil {
						return err
					}
					steps = append(steps, s)
				}
			}

			client, store, err := opts.client(cmd)
			if err != nil {
				return err
			}
			if !session.IsAuthenticated(store) {
				return errors.New("not logged in, run `paperiq login`")
			}

			log := opts.logger()
			d := dashboard.New(client, upload.NewManager(upload.DefaultValidator(), nil, log), log)
			out := cmd.OutOrStdout()

			_, err = d.UploadPath(cmd.Context(), file)
			printNotices(out, d.Notices().Drain())
			if err != nil {
				return err
			}

			for _, step := range steps {
				card := d.Card(step)
				fmt.Fprintf(out, "\n== %s ==\n", card.Title)
				err := d.Run(cmd.Context(), step)
				printNotices(out, d.Notices().Drain())
				if err != nil {
					return fmt.Errorf("%s stopped the run: %w", card.Title, err)
				}
				if text := modulecard.Render(d.Result(step)).Text(); text != "" {
					fmt.Fprintln(out, text)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "document to process (.pdf, .docx, .doc)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printNotices(w io.Writer, notices []models.Notice) {
	for _, n := range notices {
		c := color.New(color.FgCyan)
		switch n.Level {
		case models.NoticeSuccess:
			c = color.New(color.FgGreen)
		case models.NoticeError:
			c = color.New(color.FgRed)
		}
		c.Fprintln(w, n.Message)
	}
}
