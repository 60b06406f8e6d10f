package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrGarbonzo/secret-network-mcp/registry"
)

var (
	tokenPattern string
	tokenKind    string
	exportPath   string
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List the token registry",
	Long: `Print the tokens the server resolves by symbol: the built-ins plus any
tokens file. --export writes them as a TOML file that can be edited and passed
back with --tokens.`,
	RunE: runTokens,
}

func init() {
	flags := tokensCmd.Flags()
	flags.StringVar(&tokenPattern, "filter", "", "glob matched against symbol and name, e.g. 's*'")
	flags.StringVar(&tokenKind, "kind", "", "snip20 or snip721")
	flags.StringVar(&exportPath, "export", "", "write the registry to this TOML file")
}

func loadTokens(cmd *cobra.Command) (*registry.Registry, error) {
	config, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if config.TokensFile == "" {
		return registry.Default(), nil
	}
	return registry.LoadFile(config.TokensFile)
}

func runTokens(cmd *cobra.Command, _ []string) error {
	tokens, err := loadTokens(cmd)
	if err != nil {
		return err
	}

	if exportPath != "" {
		if err := tokens.WriteFile(exportPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tokens to %s\n", tokens.Len(), exportPath)
		return nil
	}

	var list []registry.Token
	if tokenPattern != "" {
		if list, err = tokens.Filter(tokenPattern); err != nil {
			return err
		}
	} else {
		list = tokens.List("")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tKIND\tDECIMALS\tADDRESS")
	for _, t := range list {
		if tokenKind != "" && string(t.Kind) != tokenKind {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.Symbol, t.Name, t.Kind, t.Decimals, t.Address)
	}
	return w.Flush()
}
