package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cpp2cleo/internal/output"
	"cpp2cleo/internal/pex"
	"cpp2cleo/internal/probe"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		inDir   string
		exePath string
		n       int
		all     bool
		fail    bool
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that record addresses land on function entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := output.ReadRecords(inDir)
			if err != nil {
				return err
			}
			exe, err := pex.Open(exePath)
			if err != nil {
				return err
			}
			defer exe.Close()
			a.log.Info().Str("exe", exePath).Str("image_base", fmt.Sprintf("0x%X", exe.ImageBase())).
				Int64("size", exe.FileSize()).Int("sections", len(exe.Sections())).Msg("executable loaded")

			results := probe.Check(exe, recs, n)
			if err := writeProbe(filepath.Join(inDir, "probe.json"), results); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			bad := 0
			for _, r := range results {
				if r.Kind.Plausible() && !all {
					continue
				}
				if !r.Kind.Plausible() {
					bad++
				}
				printProbe(w, r)
			}
			counts := probe.Count(results)
			for _, k := range []probe.Kind{
				probe.KindClassic, probe.KindNoFramePointer, probe.KindPushOnly,
				probe.KindSEH, probe.KindOther, probe.KindInvalid,
			} {
				fmt.Fprintf(w, "%s %d\n", labelStyle.Render(fmt.Sprintf("%-17s", k)), counts[k])
			}
			if fail && bad > 0 {
				return fmt.Errorf("%d of %d addresses are not function entries", bad, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inDir, "in", "", "scan output directory")
	cmd.Flags().StringVar(&exePath, "exe", "", "32-bit game executable")
	cmd.Flags().IntVar(&n, "n", 3, "instructions to decode per address")
	cmd.Flags().BoolVar(&all, "all", false, "list plausible entries too")
	cmd.Flags().BoolVar(&fail, "fail", false, "exit non-zero when an address is invalid")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("exe")
	return cmd
}

func writeProbe(path string, results []probe.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode probe: %w", err)
	}
	return writeFile(path, func(w *bufio.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}
