package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opengovern/ratelimits/adapters"
)

func newParseCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a saved header block",
		Long: `Parse reads "Name: value" header lines, as printed by curl -i, from a
file or from standard input when no file (or "-") is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open header file")
				}
				defer f.Close()
				in = f
			}

			data, err := io.ReadAll(in)
			if err != nil {
				return errors.Wrap(err, "read headers")
			}
			headers, err := adapters.ParseRaw(string(data))
			if err != nil {
				return err
			}

			p, err := newParser(v)
			if err != nil {
				return err
			}
			rl, err := p.Parse(headers)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), rl, p.Now(), v.GetBool("json"))
		},
	}
}
