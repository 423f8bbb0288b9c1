package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cpp2cleo/internal/addrtab"
)

func newAddrCmd(a *app) *cobra.Command {
	var (
		path  string
		scope string
	)
	cmd := &cobra.Command{
		Use:   "addr",
		Short: "Dump the address table as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := addrtab.Load(path)
			if err != nil {
				return err
			}
			dump := make(map[string]map[string]string)
			for _, s := range table.Scopes() {
				if scope != "" && s != scope {
					continue
				}
				dump[s] = table.Symbols(s)
			}
			if scope != "" && len(dump) == 0 {
				return fmt.Errorf("scope %q not in %s", scope, path)
			}
			a.log.Debug().Int("scopes", len(dump)).Msg("address table dump")

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(dump); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&path, "addr", "", "address table")
	cmd.Flags().StringVar(&scope, "scope", "", "only this scope")
	_ = cmd.MarkFlagRequired("addr")
	return cmd
}
