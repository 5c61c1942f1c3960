package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/config"
)

func newConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage engine configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default engine configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "mogul.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigInit(afero.NewOsFs(), path, v.GetBool("force"), cmd.OutOrStdout())
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Check an engine configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(afero.NewOsFs(), args[0], cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

func runConfigInit(fs afero.Fs, path string, force bool, out io.Writer) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return err
	}
	if exists && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.SaveFs(fs, path, config.NewEngineConfig("mogul")); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}

func runConfigValidate(fs afero.Fs, path string, out io.Writer) error {
	cfg, err := config.LoadEngineConfig(fs, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: ok (%d pools)\n", path, len(cfg.Pools))
	for _, name := range cfg.PoolNames() {
		p, _ := cfg.Pool(name)
		mode := "shared"
		if p.Unique {
			mode = "unique"
		}
		fmt.Fprintf(out, "  %-12s capacity=%d %s\n", name, p.Capacity, mode)
	}
	return nil
}
