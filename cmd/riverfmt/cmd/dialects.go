package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverfmt/riverfmt/dialect"
)

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List built-in dialect profile names",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range []string{"ansi", "postgres", "mysql", "tsql"} {
			p, err := dialect.Get(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-10s  %d keywords, %d function keywords\n", p.Name(), len(p.Keywords()), len(p.FunctionKeywords()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dialectsCmd)
}
