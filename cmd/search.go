// -- cmd/search.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/internal/observability"
	"github.com/acheron9x/cartpilot/pkg/storefront"
)

// newSearchCmd creates and configures the `search` command.
func newSearchCmd() *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Searches a storefront and lists the matching products",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			query := args[0]

			env, cleanup, err := setupEnv(ctx, viper.GetString("site"), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			home := storefront.NewHomePage(env.ix, env.site, logger)
			if err := home.Open(ctx); err != nil {
				return fmt.Errorf("opening %s: %w", env.site.BaseURL(), err)
			}
			results, err := home.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("searching for %q: %w", query, err)
			}

			if sort := viper.GetString("sort"); sort != "" {
				if err := results.SortBy(ctx, sort); err != nil {
					return err
				}
			}

			products, err := results.Products(ctx)
			if err != nil {
				return err
			}
			logger.Info("Search finished.",
				zap.String("query", query), zap.Int("results", len(products)))

			for _, p := range products {
				availability := "out of stock"
				if p.Available {
					availability = "in stock"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-60s %12s  %s\n", p.Name, p.PriceText, availability)
			}
			return nil
		},
	}

	searchCmd.Flags().String("sort", "", "sort order value for the results dropdown")
	return searchCmd
}
