// Package session establishes and verifies the authenticated portal
// session on a browser page. Login is attempted at most once per call:
// a rejected credential is never resubmitted against the portal.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/docfetch/acquire/internal/browser"
	"github.com/hazyhaar/docfetch/acquire/internal/portal"
	"github.com/hazyhaar/docfetch/acquire/model"
)

// Manager authenticates pages against one portal adapter.
type Manager struct {
	adapter portal.Adapter
	logger  *slog.Logger
}

// New creates a Manager.
func New(adapter portal.Adapter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{adapter: adapter, logger: logger}
}

// EnsureAuthenticated is a no-op when the page already carries a valid
// session. Otherwise it fills and submits the login form once.
func (m *Manager) EnsureAuthenticated(ctx context.Context, page browser.Page, creds model.Credentials) error {
	mk := m.adapter.Markup()
	m.logger.Info("session: checking authentication")

	if err := page.Navigate(ctx, m.adapter.HomeURL()); err != nil {
		return fmt.Errorf("session: open home: %w", err)
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if sig := Observe(html, mk); sig.State() == Authenticated {
		m.logger.Info("session: already authenticated")
		return nil
	}

	if creds.Identifier == "" || creds.Secret == "" {
		return fmt.Errorf("session: credentials required for login: %w", model.ErrAuthRejected)
	}

	m.logger.Info("session: logging in", "identifier", creds.Identifier)
	if err := page.Navigate(ctx, m.adapter.LoginURL()); err != nil {
		return fmt.Errorf("session: open login: %w", err)
	}
	html, err = page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	form, err := LocateForm(html, mk)
	if err != nil {
		return err
	}
	if err := page.Fill(ctx, form.Identifier, creds.Identifier); err != nil {
		return fmt.Errorf("session: fill identifier: %w", err)
	}
	if err := page.Fill(ctx, form.Secret, creds.Secret); err != nil {
		return fmt.Errorf("session: fill secret: %w", err)
	}
	if err := page.Submit(ctx, form.Submit, form.SubmitText); err != nil {
		if errors.Is(err, model.ErrNavigationTimeout) {
			return fmt.Errorf("session: login submit: %w", err)
		}
		return fmt.Errorf("session: login submit: %v: %w", err, model.ErrAuthRejected)
	}

	html, err = page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	sig := Observe(html, mk)
	if st := sig.State(); st != Authenticated {
		m.logger.Warn("session: login not confirmed", "state", st.String(),
			"greeting", sig.Greeting, "login_surface", sig.LoginSurface,
			"password_input", sig.PasswordInput, "failure_marker", sig.FailureMarker)
		return fmt.Errorf("session: state %s after submit: %w", st, model.ErrAuthRejected)
	}

	m.logger.Info("session: logged in")
	return nil
}

// Verify checks that the session is still alive. It probes the current
// document first and only navigates home when that probe is inconclusive.
// It never logs in.
func (m *Manager) Verify(ctx context.Context, page browser.Page) error {
	mk := m.adapter.Markup()

	html, err := page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	switch Probe(html, mk) {
	case Authenticated:
		return nil
	case NotAuthenticated:
		return fmt.Errorf("session: portal shows login surface at %s: %w", page.URL(), model.ErrSessionExpired)
	}

	if err := page.Navigate(ctx, m.adapter.HomeURL()); err != nil {
		return fmt.Errorf("session: verify: %w", err)
	}
	html, err = page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if st := Probe(html, mk); st != Authenticated {
		return fmt.Errorf("session: state %s on home page: %w", st, model.ErrSessionExpired)
	}
	return nil
}

// Form holds the selectors of a located login form.
type Form struct {
	Identifier string
	Secret     string
	Submit     string
	SubmitText string
}

// LocateForm finds the login inputs structurally: the first text-like
// input and the first password input, preferring those inside the form
// that owns the password field. Input names and placeholders are ignored.
func LocateForm(html string, mk *portal.Markup) (*Form, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("session: parse login page: %w", err)
	}

	scope := "form:has(" + mk.SecretInput + ")"
	f := &Form{
		Identifier: scoped(scope, mk.IdentifierInput),
		Secret:     scoped(scope, mk.SecretInput),
	}
	if doc.Find(f.Identifier).Length() == 0 || doc.Find(f.Secret).Length() == 0 {
		f.Identifier, f.Secret = mk.IdentifierInput, mk.SecretInput
	}
	if doc.Find(f.Identifier).Length() == 0 || doc.Find(f.Secret).Length() == 0 {
		return nil, fmt.Errorf("session: no identifier/password input pair: %w", model.ErrAuthFormNotFound)
	}

	submit, text, ok := locateSubmit(doc, mk)
	if !ok {
		return nil, fmt.Errorf("session: no submit control: %w", model.ErrAuthFormNotFound)
	}
	f.Submit, f.SubmitText = submit, text
	return f, nil
}

// locateSubmit prefers a button labelled with the portal's submit text,
// then a submit input carrying it as value, then any submit control.
func locateSubmit(doc *goquery.Document, mk *portal.Markup) (selector, text string, ok bool) {
	if mk.SubmitText != "" {
		found := false
		doc.Find("button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = strings.Contains(s.Text(), mk.SubmitText)
			return !found
		})
		if found {
			return "button", mk.SubmitText, true
		}
		if !strings.ContainsAny(mk.SubmitText, `"\`) {
			sel := `input[type="submit"][value*="` + mk.SubmitText + `"]`
			if doc.Find(sel).Length() > 0 {
				return sel, "", true
			}
		}
	}
	const generic = `button[type="submit"], input[type="submit"]`
	if doc.Find(generic).Length() > 0 {
		return generic, "", true
	}
	return "", "", false
}

// scoped prefixes every selector of a comma-separated list with scope.
func scoped(scope, list string) string {
	parts := strings.Split(list, ",")
	for i, p := range parts {
		parts[i] = scope + " " + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
