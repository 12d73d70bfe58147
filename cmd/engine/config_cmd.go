package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jobscout-engine/internal/config"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or check the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveConfigPath()
		if path == "" {
			path = config.DefaultPath()
		}
		if initForce {
			if err := config.SaveAtomic(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote defaults to %s\n", path)
			return nil
		}
		created, err := config.EnsureUserConfig(path)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists (use --force to overwrite)\n", path)
		}
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config and list errors and warnings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveConfigPath()
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		_, vr := config.NormalizeAndValidate(cfg)

		out := cmd.OutOrStdout()
		for _, w := range vr.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		for _, e := range vr.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		if !vr.OK() {
			return errors.New("config is invalid")
		}
		fmt.Fprintln(out, "config OK")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
