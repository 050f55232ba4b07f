// pkg/checkout/flow.go
package checkout

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
	"github.com/acheron9x/cartpilot/pkg/interact"
)

// Selectors names the page elements the checkout flow drives. Delivery
// options are an explicit key-to-locator mapping: selecting by position in
// a same-class list is an ordering assumption the DOM can violate.
type Selectors struct {
	DeliveryOptions  map[string]string
	ProceedButton    string
	CardHolder       string
	CardNumber       string
	CardExpiry       string
	CardSecurityCode string
	PlaceOrderButton string
	OrderNumber      string
}

// Card carries the payment details for the payment step.
type Card struct {
	Holder       string
	Number       string
	Expiry       string
	SecurityCode string
}

// StepGuardError reports a state-gated action invoked in the wrong step.
// The underlying action was not attempted.
type StepGuardError struct {
	Action   string
	Expected Step
	Current  Step
}

func (e *StepGuardError) Error() string {
	return fmt.Sprintf("%s requires the %s step, but the current step is %s",
		e.Action, e.Expected, e.Current)
}

// Flow drives a checkout against a live session. The current step is
// recomputed from the page location before every gated action.
type Flow struct {
	ix          *interact.Interactor
	classify    Classifier
	sel         Selectors
	logger      *zap.Logger
	stepTimeout time.Duration
}

// NewFlow creates a checkout flow.
func NewFlow(ix *interact.Interactor, classify Classifier, sel Selectors, stepTimeout time.Duration, logger *zap.Logger) *Flow {
	return &Flow{
		ix:          ix,
		classify:    classify,
		sel:         sel,
		logger:      logger.Named("checkout"),
		stepTimeout: stepTimeout,
	}
}

// CurrentStep derives the checkout step from the session's current address.
func (f *Flow) CurrentStep(ctx context.Context) (Step, error) {
	url, err := f.ix.Driver().CurrentURL(ctx)
	if err != nil {
		return StepUnknown, fmt.Errorf("reading current location: %w", err)
	}
	return f.classify(url), nil
}

// requireStep asserts the precondition of a state-gated action. On
// mismatch it logs a warning and returns a StepGuardError without touching
// the page.
func (f *Flow) requireStep(ctx context.Context, expected Step, action string) error {
	current, err := f.CurrentStep(ctx)
	if err != nil {
		return err
	}
	if current != expected {
		f.logger.Warn("Step precondition not met; action skipped.",
			zap.String("action", action),
			zap.String("expected_step", expected.String()),
			zap.String("current_step", current.String()))
		return &StepGuardError{Action: action, Expected: expected, Current: current}
	}
	return nil
}

// SelectDeliveryOption picks the named delivery option and advances to the
// payment step. Valid only in the delivery step.
func (f *Flow) SelectDeliveryOption(ctx context.Context, key string) error {
	if err := f.requireStep(ctx, StepDelivery, "select delivery option"); err != nil {
		return err
	}

	locator, ok := f.sel.DeliveryOptions[key]
	if !ok {
		return fmt.Errorf("delivery option %q is not configured (known options: %v)",
			key, sortedKeys(f.sel.DeliveryOptions))
	}

	f.logger.Info("Selecting delivery option.", zap.String("option", key))
	if err := f.ix.Click(ctx, locator); err != nil {
		return err
	}
	if err := f.ix.Click(ctx, f.sel.ProceedButton); err != nil {
		return err
	}
	if err := f.ix.WaitForNavigation(ctx, browser.LoadStateLoad, f.stepTimeout); err != nil {
		return err
	}

	current, err := f.CurrentStep(ctx)
	if err != nil {
		return err
	}
	if current != StepPayment {
		return fmt.Errorf("delivery selection did not advance to payment; current step is %s", current)
	}
	return nil
}

// FillPaymentCard fills the card fields. Valid only in the payment step.
// Field values flow through the interaction layer's secret masking before
// reaching the logs.
func (f *Flow) FillPaymentCard(ctx context.Context, card Card) error {
	if err := f.requireStep(ctx, StepPayment, "fill payment card"); err != nil {
		return err
	}

	f.logger.Info("Filling payment details.", zap.String("card_holder", card.Holder))
	fields := []struct {
		locator string
		value   string
	}{
		{f.sel.CardHolder, card.Holder},
		{f.sel.CardNumber, card.Number},
		{f.sel.CardExpiry, card.Expiry},
		{f.sel.CardSecurityCode, card.SecurityCode},
	}
	for _, field := range fields {
		if err := f.ix.Fill(ctx, field.locator, field.value); err != nil {
			return err
		}
	}
	return nil
}

// PlaceOrder submits the order and verifies the confirmation step is
// reached. Valid only in the payment step.
func (f *Flow) PlaceOrder(ctx context.Context) error {
	if err := f.requireStep(ctx, StepPayment, "place order"); err != nil {
		return err
	}

	f.logger.Info("Placing order.")
	if err := f.ix.Click(ctx, f.sel.PlaceOrderButton); err != nil {
		return err
	}
	if err := f.ix.WaitForNavigation(ctx, browser.LoadStateLoad, f.stepTimeout); err != nil {
		return err
	}

	current, err := f.CurrentStep(ctx)
	if err != nil {
		return err
	}
	if current != StepConfirmation {
		return fmt.Errorf("order placement did not reach confirmation; current step is %s", current)
	}
	return nil
}

// IsOrderConfirmed reports whether the flow is in the terminal
// confirmation step.
func (f *Flow) IsOrderConfirmed(ctx context.Context) bool {
	current, err := f.CurrentStep(ctx)
	return err == nil && current == StepConfirmation
}

var orderNumberPattern = regexp.MustCompile(`\d+`)

// OrderNumber extracts the order number from the confirmation page. Valid
// only in the confirmation step.
func (f *Flow) OrderNumber(ctx context.Context) (string, error) {
	if err := f.requireStep(ctx, StepConfirmation, "read order number"); err != nil {
		return "", err
	}

	h, err := f.ix.WaitForElement(ctx, f.sel.OrderNumber, f.stepTimeout)
	if err != nil {
		return "", err
	}
	text, err := f.ix.Driver().Text(ctx, h)
	if err != nil {
		return "", fmt.Errorf("reading order number text: %w", err)
	}
	number := orderNumberPattern.FindString(text)
	if number == "" {
		return "", fmt.Errorf("no order number found in %q", text)
	}
	return number, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
