package cli

import (
	"github.com/spf13/cobra"
)

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Manage registered reference code corpora",
}

var refAddWeight float64

var refAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Index path as a new reference corpus",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		ref, err := app.Refs.Add(cmd.Context(), args[0], args[1], refAddWeight)
		if err != nil {
			return err
		}
		return printResult(ref, func() { printf("added reference %s (%s)\n", ref.Name, ref.Path) })
	},
}

var refListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered references",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		refs, err := app.Refs.List()
		if err != nil {
			return err
		}
		return printResult(refs, func() {
			for _, r := range refs {
				printf("%-20s %-8.2f %s\n", r.Name, r.Weight, r.Path)
			}
		})
	},
}

var refUpdateWeight float64

var refUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Re-index a reference and optionally reweight it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		ref, err := app.Refs.Update(cmd.Context(), args[0], refUpdateWeight)
		if err != nil {
			return err
		}
		return printResult(ref, func() { printf("updated reference %s\n", ref.Name) })
	},
}

var refRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a registered reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		if err := app.Refs.Remove(args[0]); err != nil {
			return err
		}
		return printResult(map[string]string{"removed": args[0]}, func() { printf("removed reference %s\n", args[0]) })
	},
}

func init() {
	refAddCmd.Flags().Float64Var(&refAddWeight, "weight", 1.0, "RRF contribution weight for this reference")
	refUpdateCmd.Flags().Float64Var(&refUpdateWeight, "weight", 0, "new RRF weight (0 leaves it unchanged)")

	refCmd.AddCommand(refAddCmd, refListCmd, refUpdateCmd, refRemoveCmd)
	rootCmd.AddCommand(refCmd)
}
