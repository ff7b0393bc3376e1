package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnoswap-labs/extdot/internal/tokens"
)

var renderTokens bool

// tokensCmd prints the token tree the expander works on.
var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Dump the token tree of a file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			src []byte
			err error
		)
		if len(args) == 0 || args[0] == "-" {
			src, err = io.ReadAll(cmd.InOrStdin())
		} else {
			src, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}
		return dumpTokens(cmd.OutOrStdout(), src, renderTokens)
	},
}

func init() {
	tokensCmd.Flags().BoolVar(&renderTokens, "render", false, "Print the re-rendered source instead of the tree")
}

func dumpTokens(out io.Writer, src []byte, render bool) error {
	ts, err := tokens.Lex(string(src))
	if err != nil {
		return err
	}
	if render {
		_, err = fmt.Fprintln(out, tokens.Render(ts, tokens.RenderOptions{}))
		return err
	}
	_, err = io.WriteString(out, tokens.Dump(ts))
	return err
}
