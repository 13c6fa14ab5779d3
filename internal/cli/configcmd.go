package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctx/internal/config"
	"github.com/ctxengine/ctx/internal/core"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or modify project configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show [path]",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(args)
		if err != nil {
			return err
		}
		cfg, err := core.ReadConfig(root)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:  "get <key>",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(nil)
		if err != nil {
			return err
		}
		cfg, err := core.ReadConfig(root)
		if err != nil {
			return err
		}
		tree, err := toTree(cfg)
		if err != nil {
			return err
		}
		v, ok := lookupPath(tree, args[0])
		if !ok {
			return fmt.Errorf("config: unknown key %q", args[0])
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:  "set <key> <value>",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(nil)
		if err != nil {
			return err
		}
		cfg, err := core.ReadConfig(root)
		if err != nil {
			return err
		}
		tree, err := toTree(cfg)
		if err != nil {
			return err
		}
		if err := setPath(tree, args[0], args[1]); err != nil {
			return err
		}
		updated, err := fromTree(tree)
		if err != nil {
			return err
		}
		if err := core.WriteConfig(root, updated); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:  "reset [path]",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(args)
		if err != nil {
			return err
		}
		if err := core.WriteConfig(root, config.Default()); err != nil {
			return err
		}
		fmt.Println("configuration reset to defaults")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd, configResetCmd)
	rootCmd.AddCommand(configCmd)
}

// toTree/fromTree round-trip a Config through a generic JSON tree so get/set
// can address arbitrary dotted paths without a field-by-field switch,
// mirroring the loader's own map[string]json.RawMessage overlay technique.
func toTree(cfg *config.Config) (map[string]any, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromTree(tree map[string]any) (*config.Config, error) {
	b, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	var cfg config.Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func lookupPath(tree map[string]any, key string) (any, bool) {
	var cur any = tree
	for _, p := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[p]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func setPath(tree map[string]any, key, rawValue string) error {
	parts := strings.Split(key, ".")
	m := tree
	for i, p := range parts {
		if i == len(parts)-1 {
			m[p] = parseScalar(rawValue)
			return nil
		}
		next, ok := m[p].(map[string]any)
		if !ok {
			return fmt.Errorf("config: unknown key %q", key)
		}
		m = next
	}
	return nil
}

func parseScalar(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out
	}
	return raw
}
