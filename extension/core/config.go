// config.go implements the "tractome config" command for configuration
// management.
//
// Separated from extension.go to isolate config-specific logic including
// the local vs global config precedence rules.
//
// Design: Config follows a cascade model similar to git: local config
// (.tractome/config.yaml) takes precedence over global
// (~/.tractome/config.yaml). The --local flag forces use of local config
// even if it doesn't exist yet.

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/cmd"
	"github.com/maharshi-gor/tractome/extension"
	"github.com/maharshi-gor/tractome/internal/config"
	"github.com/maharshi-gor/tractome/internal/log"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  tractome config                     # show config
  tractome config csv.delimiter       # show csv.delimiter value
  tractome config csv.delimiter ";"   # set csv.delimiter

Configuration locations:
  Global: ~/.tractome/config.yaml
  Local:  .tractome/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local or --global to pick a scope explicitly.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagLocal, false, "Use local config (.tractome/config.yaml)")
	c.Flags().Bool(extension.FlagGlobal, false, "Use global config (~/.tractome/config.yaml)")
	c.MarkFlagsMutuallyExclusive(extension.FlagLocal, extension.FlagGlobal)
	c.Flags().Bool(extension.FlagUnset, false, "Clear the key back to its default")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool(extension.FlagLocal)
	forceGlobal, _ := c.Flags().GetBool(extension.FlagGlobal)
	unset, _ := c.Flags().GetBool(extension.FlagUnset)

	// Load config: local if exists, otherwise global.
	// --local forces local even if it doesn't exist yet; --global skips
	// any local config in the working directory.
	var cfg *config.Config
	var err error
	switch {
	case forceLocal:
		cfg, err = config.LoadScope(config.ScopeLocal)
	case forceGlobal:
		cfg, err = config.LoadScope(config.ScopeGlobal)
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	scopeName := "global"
	if cfg.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch {
	case len(args) == 0:
		if cmd.JSON() {
			return cmd.PrintJSON(cfg.All())
		}
		for _, kv := range cfg.All() {
			fmt.Fprintf(cmd.Out(), "%s: %s\n", kv.Key, kv.Value)
		}
		log.Event("core:config", "list").Write(nil)

	case unset:
		if err := cfg.Unset(args[0]); err != nil {
			log.Event("core:config", "unset").Detail("key", args[0]).Write(err)
			return cmd.PrintJSONError(fmt.Errorf("config unset %q: %w", args[0], err))
		}
		saveErr := cfg.Save()
		log.Event("core:config", "unset").Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		fmt.Fprintf(cmd.Out(), "%s unset (%s)\n", args[0], scopeName)

	case len(args) == 1:
		v, err := cfg.Get(args[0])
		log.Event("core:config", "get").Detail("key", args[0]).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		if cmd.JSON() {
			return cmd.PrintJSON(config.KeyValue{Key: args[0], Value: v})
		}
		fmt.Fprintln(cmd.Out(), v)

	case len(args) == 2:
		if err := cfg.Set(args[0], args[1]); err != nil {
			log.Event("core:config", "set").Detail("key", args[0]).Write(err)
			return cmd.PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := cfg.Save()
		log.Event("core:config", "set").Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		fmt.Fprintf(cmd.Out(), "%s = %s (%s)\n", args[0], args[1], scopeName)
	}
	return nil
}
