// pkg/storefront/login.go
package storefront

import (
	"context"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
	"github.com/acheron9x/cartpilot/pkg/interact"
)

// LoginPage drives the account sign-in form.
type LoginPage struct {
	ix     *interact.Interactor
	site   *Site
	logger *zap.Logger
}

// NewLoginPage creates the sign-in page object.
func NewLoginPage(ix *interact.Interactor, site *Site, logger *zap.Logger) *LoginPage {
	return &LoginPage{ix: ix, site: site, logger: logger.Named("login")}
}

// Open navigates to the sign-in form.
func (p *LoginPage) Open(ctx context.Context) error {
	timeout := p.site.Timeout("page_load", 0)
	return p.ix.Navigate(ctx, p.site.LoginURL(), browser.LoadStateNetworkIdle, timeout)
}

// Login submits the credentials and waits for the account landmark to
// appear. The password value never reaches the logs; Fill masks it based
// on the locator.
func (p *LoginPage) Login(ctx context.Context, email, password string) error {
	emailSel, err := p.site.Selector("login_email")
	if err != nil {
		return err
	}
	passwordSel, err := p.site.Selector("login_password")
	if err != nil {
		return err
	}
	submitSel, err := p.site.Selector("login_submit")
	if err != nil {
		return err
	}

	if err := p.ix.Fill(ctx, emailSel, email); err != nil {
		return err
	}
	if err := p.ix.Fill(ctx, passwordSel, password); err != nil {
		return err
	}
	if err := p.ix.Click(ctx, submitSel); err != nil {
		return err
	}

	timeout := p.site.Timeout("login", 0)
	if err := p.ix.WaitForNavigation(ctx, browser.LoadStateNetworkIdle, timeout); err != nil {
		return err
	}
	if !p.IsLoggedIn(ctx) {
		p.logger.Warn("Account landmark not visible after login submit.",
			zap.String("email", email))
	} else {
		p.logger.Info("Logged in.", zap.String("email", email))
	}
	return nil
}

// IsLoggedIn reports whether the signed-in account landmark is visible.
func (p *LoginPage) IsLoggedIn(ctx context.Context) bool {
	sel, err := p.site.Selector("account_landmark")
	if err != nil {
		p.logger.Warn("No account landmark selector configured.", zap.Error(err))
		return false
	}
	return p.ix.IsVisible(ctx, sel)
}
