package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/pitwall/query"
)

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize [files...]",
	Short: "Collapse SQL whitespace onto one line",
	Long:  `Read SQL from the named files, or stdin when none are given, and print each with its whitespace collapsed. Useful for diffing generated queries.`,
	Example: `  echo "select  1
    from  t" | pitwall canonicalize`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return canonicalize(cmd.OutOrStdout(), cmd.InOrStdin())
		}
		for _, name := range args {
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			err = canonicalize(cmd.OutOrStdout(), f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	},
}

func canonicalize(w io.Writer, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, query.Canonicalize(string(b)))
	return err
}
