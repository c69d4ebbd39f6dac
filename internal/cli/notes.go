package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/model"
)

var (
	noteSentiment float64
	noteMentions  string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage project notes (docs/notes.toml)",
}

var notesAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		n, err := app.Notes.Add(cmd.Context(), args[0], model.Sentiment(noteSentiment), splitMentions(noteMentions))
		if err != nil {
			return err
		}
		return printResult(n, func() { printf("added note %s\n", n.ID) })
	},
}

var notesUpdateCmd = &cobra.Command{
	Use:   "update <old-text> <new-text>",
	Short: "Replace a note's text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		n, err := app.Notes.Update(cmd.Context(), args[0], args[1], model.Sentiment(noteSentiment), splitMentions(noteMentions))
		if err != nil {
			return err
		}
		return printResult(n, func() { printf("updated note %s\n", n.ID) })
	},
}

var notesRemoveCmd = &cobra.Command{
	Use:   "remove <text>",
	Short: "Remove a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		if err := app.Notes.Remove(args[0]); err != nil {
			return err
		}
		return printResult(map[string]string{"removed": args[0]}, func() { printf("removed note\n") })
	},
}

var auditModeExpires string

var auditModeCmd = &cobra.Command{
	Use:   "audit-mode [on|off]",
	Short: "Suppress notes from retrieval output for a bounded window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if len(args) == 0 {
			on, err := app.Store.AuditMode()
			if err != nil {
				return err
			}
			return printResult(map[string]bool{"audit_mode": on}, func() {
				if on {
					printf("audit mode is on\n")
				} else {
					printf("audit mode is off\n")
				}
			})
		}

		on := args[0] == "on"
		var expires time.Time
		if auditModeExpires != "" {
			d, err := time.ParseDuration(auditModeExpires)
			if err != nil {
				return err
			}
			expires = time.Now().UTC().Add(d)
		}
		if err := app.Store.SetAuditMode(on, expires); err != nil {
			return err
		}
		return printResult(map[string]bool{"audit_mode": on}, func() {
			printf("audit mode is now %s\n", args[0])
		})
	},
}

func splitMentions(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func init() {
	for _, c := range []*cobra.Command{notesAddCmd, notesUpdateCmd} {
		c.Flags().Float64Var(&noteSentiment, "sentiment", 0, "sentiment coordinate in [-1, 1]")
		c.Flags().StringVar(&noteMentions, "mentions", "", "comma-separated list of mentioned names")
	}
	auditModeCmd.Flags().StringVar(&auditModeExpires, "expires", "", "duration until audit mode auto-expires, e.g. 2h")

	notesCmd.AddCommand(notesAddCmd, notesUpdateCmd, notesRemoveCmd)
	rootCmd.AddCommand(notesCmd, auditModeCmd)
}
