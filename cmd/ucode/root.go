package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/ucode-layout/internal/config"
)

// execute builds the command tree and runs it with args.
func execute(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		configPath string
		imagePath  string
		wasmPath   string
		session    string
		noEnums    bool
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "ucode",
		Short:         "Apply the AMD Zen microcode patch layout to an image",
		Long:          `ucode registers the AMD microcode patch types in a host database and types a patch image: header, random blocks and the micro-op region, sized to what the image actually holds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("image") {
				cfg.Image = imagePath
			}
			if flags.Changed("wasm") {
				cfg.Wasm = wasmPath
			}
			if flags.Changed("session") {
				cfg.Session = session
			}
			if noEnums {
				cfg.Host.EnumSupport = false
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, _ := cfg.Level()
			a.cfg = cfg
			a.log = newLogger(os.Stderr, level)
			setLoggers(a.log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
			a.close(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "TOML config file")
	pf.StringVarP(&imagePath, "image", "i", "", "patch image file")
	pf.StringVar(&wasmPath, "wasm", "", "wasm module whose linear memory is the image")
	pf.BoolVar(&a.inWasm, "in-wasm", false, "load --image into a wasm linear memory")
	pf.StringVarP(&session, "session", "s", "", "TOML session file to restore and save")
	pf.BoolVar(&noEnums, "no-enums", false, "host without enumeration support")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newTypesCmd(a))
	root.AddCommand(newApplyCmd(a))
	root.AddCommand(newApplyZeroCmd(a))
	root.AddCommand(newRegionsCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newCommandsCmd())
	root.AddCommand(newTUICmd(a))

	return root
}
