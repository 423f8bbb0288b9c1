package main

import (
	"github.com/spf13/cobra"

	"cpp2cleo/internal/output"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		sf scanFlags
		rf renderFlags
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Scan and render in one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sf.apply(cmd, a); err != nil {
				return err
			}
			if err := rf.apply(cmd, a); err != nil {
				return err
			}
			res, m, err := a.scan(cmd.Context(), sf.in, sf.addr)
			if err != nil {
				return err
			}
			b := bundleOf(res)
			if err := output.Write(sf.out, b, m); err != nil {
				return err
			}
			written, err := a.render(sf.out, b)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), m, sf.out, written)
			return nil
		},
	}
	sf.register(cmd.Flags())
	rf.register(cmd.Flags())
	return cmd
}
