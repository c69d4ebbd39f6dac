package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var contextMode string

var contextCmd = &cobra.Command{
	Use:   "context <path>",
	Short: "List chunks defined in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runContext,
}

var readFocus string

var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print a file, or just the chunk named by --focus",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func init() {
	contextCmd.Flags().StringVar(&contextMode, "mode", "", "compact or summary (default: full chunk list)")
	readCmd.Flags().StringVar(&readFocus, "focus", "", "print only the named chunk's line range")
	rootCmd.AddCommand(contextCmd, readCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	origin := "file:" + strings.TrimPrefix(args[0], "file:")
	chunks, err := app.Store.ChunksByOrigin(origin)
	if err != nil {
		return err
	}

	return printResult(chunks, func() {
		switch contextMode {
		case "compact":
			for _, c := range chunks {
				printf("%s:%d %s\n", c.Origin, c.StartLine, c.Name)
			}
		case "summary":
			printf("%s: %d chunk(s)\n", origin, len(chunks))
		default:
			for _, c := range chunks {
				printf("%s:%d-%d %s %s\n", c.Origin, c.StartLine, c.EndLine, c.Kind, c.Name)
			}
		}
	})
}

func runRead(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if readFocus == "" {
		return printResult(string(data), func() { printf("%s", data) })
	}

	chunks, err := app.Store.ChunksByName(readFocus)
	if err != nil {
		return err
	}
	var target *chunkLine
	for _, c := range chunks {
		if strings.TrimPrefix(c.Origin, "file:") == path {
			target = &chunkLine{Start: c.StartLine, End: c.EndLine, Text: c.Text}
			break
		}
	}
	if target == nil {
		return notFound("read", readFocus)
	}

	return printResult(target.Text, func() { printf("%s\n", target.Text) })
}

type chunkLine struct {
	Start, End int
	Text       string
}
