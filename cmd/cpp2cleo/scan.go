package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cpp2cleo/internal/addrtab"
	"cpp2cleo/internal/diag"
	"cpp2cleo/internal/logging"
	"cpp2cleo/internal/output"
	"cpp2cleo/internal/scan"
)

// scanFlags are shared by scan and convert.
type scanFlags struct {
	in       string
	addr     string
	out      string
	parallel bool
	strict   bool
	workers  int
	policy   string
}

func (f *scanFlags) register(fl *pflag.FlagSet) {
	fl.StringVar(&f.in, "in", "", "annotated header listing")
	fl.StringVar(&f.addr, "addr", "", "address table for gaddrof() references")
	fl.StringVarP(&f.out, "out", "o", "", "output directory")
	fl.BoolVar(&f.parallel, "parallel", false, "resolve scope sections concurrently")
	fl.BoolVar(&f.strict, "strict", false, "fail on skipped annotations")
	fl.IntVar(&f.workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	fl.StringVar(&f.policy, "dynamic-policy", "", "missing gaddrof handling: fatal or lenient")
	_ = cobra.MarkFlagRequired(fl, "in")
	_ = cobra.MarkFlagRequired(fl, "out")
}

// apply folds explicitly set flags into the loaded configuration.
func (f *scanFlags) apply(cmd *cobra.Command, a *app) error {
	fl := cmd.Flags()
	if fl.Changed("parallel") {
		a.cfg.Parallel = f.parallel
	}
	if fl.Changed("strict") {
		a.cfg.Strict = f.strict
	}
	if fl.Changed("workers") {
		a.cfg.Workers = f.workers
	}
	if fl.Changed("dynamic-policy") {
		a.cfg.Dynamic = f.policy
	}
	return a.cfg.Validate()
}

func newScanCmd(a *app) *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Extract call records from annotated headers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, a); err != nil {
				return err
			}
			res, m, err := a.scan(cmd.Context(), f.in, f.addr)
			if err != nil {
				return err
			}
			if err := output.Write(f.out, bundleOf(res), m); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), m, f.out, nil)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

// scan reads the corpus and address table and runs one pass.
func (a *app) scan(ctx context.Context, in, addrPath string) (*scan.Result, output.Manifest, error) {
	m := output.NewManifest(toolName())
	m.Input = in

	data, err := os.ReadFile(in)
	if err != nil {
		return nil, m, fmt.Errorf("read input: %w", err)
	}
	m.InputHash = output.Digest(data)

	table := addrtab.FromMap(nil)
	if addrPath != "" {
		table, err = addrtab.Load(addrPath)
		if err != nil {
			return nil, m, err
		}
		m.AddrTable = addrPath
		if m.AddrHash, err = output.DigestFile(addrPath); err != nil {
			return nil, m, err
		}
		a.log.Info().Str("path", addrPath).Int("symbols", table.Len()).Int("scopes", len(table.Scopes())).
			Msg("address table loaded")
	}

	lines, err := scan.ReadLines(bytes.NewReader(data))
	if err != nil {
		return nil, m, err
	}

	opts := a.cfg.ScanOptions()
	logger := logging.NewWithComponent(a.logCfg, "scan")
	opts.Logger = &logger
	m.Mode = opts.Mode.String()

	start := time.Now()
	var res *scan.Result
	if a.cfg.Parallel {
		if ctx == nil {
			ctx = context.Background()
		}
		res, err = scan.ScanParallel(ctx, lines, table, &opts)
	} else {
		res, err = scan.Scan(lines, table, &opts)
	}
	if err != nil {
		return nil, m, err
	}

	m.Records = len(res.Records)
	m.Scopes = res.TOC.Files()
	m.Duplicates = res.Diags.Count(diag.KindDuplicate)
	m.Skipped = res.Diags.Len() - m.Duplicates

	a.log.Info().
		Int("lines", len(lines)).
		Int("records", m.Records).
		Int("skipped", m.Skipped).
		Int("duplicates", m.Duplicates).
		Bool("parallel", a.cfg.Parallel).
		Dur("took", time.Since(start)).
		Msg("scan complete")
	return res, m, nil
}

func bundleOf(res *scan.Result) output.Bundle {
	return output.Bundle{
		Records: res.Records,
		TOC:     res.TOC,
		Diags:   res.Diags.Items(),
	}
}
