// pkg/storefront/site.go
//
// Package storefront contains the workflow layer: page objects that drive a
// configured e-commerce site through the resilient interaction layer. All
// site specifics (URLs, selectors, step fragments) live in configuration;
// the page objects only consume them.
package storefront

import (
	"fmt"
	"strings"
	"time"

	"github.com/acheron9x/cartpilot/internal/config"
)

// Site is one configured storefront profile.
type Site struct {
	Name string
	cfg  config.SiteConfig
}

// NewSite validates and wraps a site profile.
func NewSite(name string, cfg config.SiteConfig) (*Site, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("site %q: %w", name, err)
	}
	return &Site{Name: name, cfg: cfg}, nil
}

// Selector resolves a named selector from the profile. Page objects fail
// fast on a missing key rather than waiting on an empty locator.
func (s *Site) Selector(key string) (string, error) {
	sel, ok := s.cfg.Selectors[key]
	if !ok || sel == "" {
		return "", fmt.Errorf("site %q has no selector %q", s.Name, key)
	}
	return sel, nil
}

// RowSelector resolves a selector template keyed by an item identifier.
// The template must contain exactly one %s verb; this keeps per-row
// controls an explicit mapping instead of a positional guess into a
// same-class list.
func (s *Site) RowSelector(key, itemID string) (string, error) {
	tpl, err := s.Selector(key)
	if err != nil {
		return "", err
	}
	if strings.Count(tpl, "%s") != 1 {
		return "", fmt.Errorf("selector %q of site %q must contain exactly one %%s placeholder", key, s.Name)
	}
	return fmt.Sprintf(tpl, itemID), nil
}

// URL makes a site-relative path absolute. Absolute URLs pass through.
func (s *Site) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// BaseURL returns the storefront's landing address.
func (s *Site) BaseURL() string { return s.cfg.BaseURL }

// LoginURL returns the login address, defaulting to the base URL.
func (s *Site) LoginURL() string {
	if s.cfg.LoginURL != "" {
		return s.cfg.LoginURL
	}
	return s.cfg.BaseURL
}

// CartURL returns the cart address, defaulting to the base URL.
func (s *Site) CartURL() string {
	if s.cfg.CartURL != "" {
		return s.cfg.CartURL
	}
	return s.cfg.BaseURL
}

// Timeout returns the named per-phase timeout, or fallback when unset.
func (s *Site) Timeout(name string, fallback time.Duration) time.Duration {
	return s.cfg.Timeout(name, fallback)
}

// StepFragments returns the configured step-name to URL-fragment mapping
// for the checkout classifier.
func (s *Site) StepFragments() map[string][]string { return s.cfg.Steps }

// DeliveryOptions returns the configured delivery option key to locator
// mapping.
func (s *Site) DeliveryOptions() map[string]string { return s.cfg.Delivery }
