// -- cmd/run.go --
package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/internal/notify"
	"github.com/acheron9x/cartpilot/internal/observability"
	"github.com/acheron9x/cartpilot/pkg/checkout"
	"github.com/acheron9x/cartpilot/pkg/fakedata"
	"github.com/acheron9x/cartpilot/pkg/storefront"
)

// newRunCmd creates and configures the `run` command. A run rehearses the
// whole purchase flow: search, cart, delivery and payment. Without
// --place-order the order is never submitted and the payment step is filled
// with synthetic card data that cannot clear.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Drives a purchase flow end to end for the first matching product",
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

			mailer := notify.NewMailer(env.cfg.Notify, logger)
			runErr := executeRun(ctx, env, query, logger)

			if mailer.Enabled() {
				subject := fmt.Sprintf("cartpilot run finished: %q", query)
				body := "The purchase flow completed without errors."
				if runErr != nil {
					subject = fmt.Sprintf("cartpilot run failed: %q", query)
					body = fmt.Sprintf("The purchase flow failed:\n\n%v", runErr)
				}
				if err := mailer.Send(subject, body); err != nil {
					logger.Warn("Run notification was not delivered.", zap.Error(err))
				}
			}
			return runErr
		},
	}

	runCmd.Flags().String("email", "", "account email for sign-in (skip login when empty)")
	runCmd.Flags().String("password", "", "account password (prefer CARTPILOT_PASSWORD)")
	runCmd.Flags().Int("quantity", 1, "quantity to buy")
	runCmd.Flags().String("delivery", "", "delivery option key from the site profile")
	runCmd.Flags().Bool("place-order", false, "actually submit the order instead of stopping at payment")
	return runCmd
}

// executeRun walks the storefront from search to checkout.
func executeRun(ctx context.Context, env *runEnv, query string, logger *zap.Logger) error {
	home := storefront.NewHomePage(env.ix, env.site, logger)
	if err := home.Open(ctx); err != nil {
		return fmt.Errorf("opening %s: %w", env.site.BaseURL(), err)
	}

	if email := viper.GetString("email"); email != "" {
		password := viper.GetString("password")
		if password == "" {
			return fmt.Errorf("--email was given but no password is set (use CARTPILOT_PASSWORD)")
		}
		login := storefront.NewLoginPage(env.ix, env.site, logger)
		if err := login.Open(ctx); err != nil {
			return err
		}
		if err := login.Login(ctx, email, password); err != nil {
			return fmt.Errorf("signing in as %s: %w", email, err)
		}
		if err := home.Open(ctx); err != nil {
			return err
		}
	}

	results, err := home.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching for %q: %w", query, err)
	}
	products, err := results.Products(ctx)
	if err != nil {
		return err
	}
	product, err := pickProduct(products, query)
	if err != nil {
		return err
	}
	logger.Info("Selected product.",
		zap.String("name", product.Name), zap.String("price", product.PriceText))

	detail, err := results.OpenProduct(ctx, product)
	if err != nil {
		return err
	}
	if err := detail.AddToCart(ctx); err != nil {
		return fmt.Errorf("adding %q to cart: %w", product.Name, err)
	}

	cart := storefront.NewCartPage(env.ix, env.site, logger)
	if err := cart.Open(ctx); err != nil {
		return err
	}
	items, err := cart.Items(ctx)
	if err != nil {
		return err
	}
	quantity := viper.GetInt("quantity")
	expected := []storefront.ExpectedItem{{Name: product.Name, Quantity: quantity}}

	if quantity > 1 && len(items) > 0 {
		if err := cart.SetQuantity(ctx, items[0].ID, quantity); err != nil {
			return err
		}
		if items, err = cart.Items(ctx); err != nil {
			return err
		}
	}
	if ok, problems := storefront.VerifyItems(expected, items); !ok {
		return fmt.Errorf("cart verification failed: %s", strings.Join(problems, "; "))
	}
	total, err := cart.Total(ctx)
	if err != nil {
		logger.Warn("Could not read cart total.", zap.Error(err))
	} else {
		logger.Info("Cart verified.", zap.String("total", storefront.FormatPrice(total, "€")))
	}

	flow, err := cart.ProceedToCheckout(ctx)
	if err != nil {
		return fmt.Errorf("entering checkout: %w", err)
	}
	return executeCheckout(ctx, env, flow, logger)
}

// executeCheckout drives the step machine from delivery to payment, and
// through confirmation when --place-order is set.
func executeCheckout(ctx context.Context, env *runEnv, flow *checkout.Flow, logger *zap.Logger) error {
	deliveryKey := viper.GetString("delivery")
	if deliveryKey == "" {
		for key := range env.site.DeliveryOptions() {
			deliveryKey = key
			break
		}
	}
	if deliveryKey != "" {
		if err := flow.SelectDeliveryOption(ctx, deliveryKey); err != nil {
			return fmt.Errorf("selecting delivery option %q: %w", deliveryKey, err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	card := fakedata.NewCard(rng)
	if err := flow.FillPaymentCard(ctx, card); err != nil {
		return fmt.Errorf("filling payment form: %w", err)
	}

	if !viper.GetBool("place-order") {
		step, err := flow.CurrentStep(ctx)
		if err != nil {
			return err
		}
		logger.Info("Dry run complete, stopping before order submission.",
			zap.Stringer("step", step))
		return nil
	}

	if err := flow.PlaceOrder(ctx); err != nil {
		return fmt.Errorf("placing order: %w", err)
	}
	number, err := flow.OrderNumber(ctx)
	if err != nil {
		logger.Warn("Order placed but the order number could not be read.", zap.Error(err))
		return nil
	}
	logger.Info("Order placed.", zap.String("order_number", number))
	return nil
}

// pickProduct prefers an available product whose name contains the query,
// falling back to the first available result.
func pickProduct(products []storefront.Product, query string) (storefront.Product, error) {
	if len(products) == 0 {
		return storefront.Product{}, fmt.Errorf("no products found for %q", query)
	}
	needle := strings.ToLower(query)
	var fallback *storefront.Product
	for i := range products {
		p := &products[i]
		if !p.Available {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return *p, nil
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return storefront.Product{}, fmt.Errorf("no available products found for %q", query)
}
