package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/ucode-layout/command"
	"github.com/wippyai/ucode-layout/engine"
	"github.com/wippyai/ucode-layout/errors"
	"github.com/wippyai/ucode-layout/internal/config"
	"github.com/wippyai/ucode-layout/layout"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Define the microcode types and print their declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context(), false); err != nil {
				return err
			}
			rep, err := command.Default().Run(command.DefineTypes, a.eng, 0)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, d := range rep.Diagnostics {
				fmt.Fprintln(w, "//", d)
			}
			for _, name := range a.db.TypeNames() {
				t, _ := a.db.LookupType(name)
				fmt.Fprintf(w, "%s\n\n", t.Decl())
			}
			return a.save()
		},
	}
}

func newApplyCmd(a *app) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the layout at a base address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("base") {
				base = a.cfg.Base
			}
			addr, err := config.ParseAddr(base)
			if err != nil {
				return err
			}
			return runApply(cmd, a, command.ApplyAtCursor, addr)
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "0x0", "patch base address")
	return cmd
}

func newApplyZeroCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply-zero",
		Short: "Apply the layout at file start (0x0)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, a, command.ApplyAtZero, 0)
		},
	}
}

func runApply(cmd *cobra.Command, a *app, name string, addr uint64) error {
	if err := a.open(cmd.Context(), true); err != nil {
		return err
	}
	rep, err := command.Default().Run(name, a.eng, addr)
	if rep != nil {
		printReport(cmd.OutOrStdout(), rep)
	}
	if err != nil {
		return err
	}
	return a.save()
}

func printReport(w io.Writer, rep *engine.Report) {
	fmt.Fprintf(w, "base 0x%x, 0x%x of 0x%x bytes readable\n", rep.Base, rep.Readable, layout.PatchSize)
	if rep.Registered {
		fmt.Fprintln(w, "types registered")
	}
	for _, ap := range rep.Applied {
		fmt.Fprintf(w, "  %s\n", ap)
	}
	for _, id := range rep.Skipped {
		fmt.Fprintf(w, "  %-14s skipped\n", id)
	}
	if rep.Sizing != nil {
		fmt.Fprintf(w, "ucode region: %s\n", rep.Sizing)
	}
	for _, d := range rep.Diagnostics {
		fmt.Fprintln(w, d)
	}
}

// patchBase parses s as a base address with room for a whole patch above it.
func patchBase(s string) (uint64, error) {
	addr, err := config.ParseAddr(s)
	if err != nil {
		return 0, err
	}
	if !layout.FitsAt(addr) {
		return 0, errors.InvalidInput(errors.PhaseCommand,
			fmt.Sprintf("base 0x%x leaves no room for a 0x%x-byte patch", addr, layout.PatchSize))
	}
	return addr, nil
}

func newRegionsCmd(a *app) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the patch regions in application order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("base") {
				base = a.cfg.Base
			}
			addr, err := patchBase(base)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range layout.Regions() {
				fmt.Fprintf(w, "%-14s 0x%08x-0x%08x %-24s %s\n",
					r.ID, addr+r.Offset, addr+r.End(), r.Type, r.Symbol)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "0x0", "patch base address")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		base  string
		count uint64
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode the header and leading micro-ops at a base address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("base") {
				base = a.cfg.Base
			}
			addr, err := patchBase(base)
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context(), true); err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), a, addr, count)
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "0x0", "patch base address")
	cmd.Flags().Uint64VarP(&count, "count", "n", 16, "micro-ops to decode")
	return cmd
}

func inspect(w io.Writer, a *app, base, count uint64) error {
	raw, err := a.img.Read(base, layout.HeaderSize)
	if err != nil {
		return err
	}
	hdr, err := layout.DecodeHeader(raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s @ 0x%x (date %s)\n", layout.TypeHeader, base, hdr.Date())
	fmt.Fprint(w, hdr)

	regionAddr := base + layout.RegionOffset
	raw, err = a.img.Read(regionAddr, min(count, layout.MicroOpCount)*layout.MicroOpSize)
	if err != nil {
		return err
	}
	ops := layout.DecodeMicroOps(raw)
	fmt.Fprintf(w, "\n%s @ 0x%x (%d shown)\n", layout.TypeRegion, regionAddr, len(ops))
	for i, op := range ops {
		fmt.Fprintf(w, "  [%04x] %s\n", i, op)
	}

	if vars := a.db.Vars(); len(vars) > 0 {
		fmt.Fprintln(w, "\nsession variables:")
		for _, v := range vars {
			fmt.Fprintf(w, "  0x%08x %-32s %s\n", v.Addr, v.TypeName(), v.Symbol)
		}
	}
	return nil
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the registered plugin commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := command.Default()
			w := cmd.OutOrStdout()
			for _, name := range reg.Names() {
				c, _ := reg.Lookup(name)
				marker := " "
				if c.ForAddress {
					marker = "@"
				}
				fmt.Fprintf(w, "%s %-48s %s\n", marker, c.Name, c.Description)
			}
			return nil
		},
	}
}
