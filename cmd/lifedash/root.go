package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"lifedash/internal/catalog"
)

var catalogPath string

var rootCmd = &cobra.Command{
	Use:           "lifedash",
	Short:         "Operate the lifedash command pipeline",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List the domains in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		for _, d := range cat.Domains() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", d.Name, d.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to a catalog YAML file (default: built-in)")
	rootCmd.AddCommand(domainsCmd)
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
