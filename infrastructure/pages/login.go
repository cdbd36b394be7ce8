// Package pages holds the page objects for the hosted sign-in flow and the
// spreadsheet application. Selectors belong to the external UI and change with it.
package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/infrastructure/browser"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// StaySignedInTitle is the only interstitial title the login flow accepts.
const StaySignedInTitle = "Stay signed in?"

var (
	ErrEmailScreen    = errors.New("email screen did not load correctly")
	ErrPasswordScreen = errors.New("password screen did not load correctly")
	ErrAcceptButton   = errors.New(`accept button in "Stay signed in?" prompt is not visible`)
	ErrPostLoginLoad  = fmt.Errorf("page did not load correctly after login: %w", browser.ErrNotLoaded)
)

// UsernameMismatchError is returned when the account name shown after the
// email step differs from the username that was entered.
type UsernameMismatchError struct {
	Displayed string
	Expected  string
}

func (e *UsernameMismatchError) Error() string {
	return fmt.Sprintf("displayed email (%s) does not match provided username (%s)", e.Displayed, e.Expected)
}

// LoginStage is a step of the sign-in state machine.
type LoginStage int

const (
	StageSignInPrompt LoginStage = iota
	StageEmailEntry
	StagePasswordEntry
	StageStaySignedIn
	StageLoggedIn
)

func (s LoginStage) String() string {
	switch s {
	case StageSignInPrompt:
		return "sign-in prompt"
	case StageEmailEntry:
		return "email entry"
	case StagePasswordEntry:
		return "password entry"
	case StageStaySignedIn:
		return "stay signed in"
	case StageLoggedIn:
		return "logged in"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

var loginLocators = struct {
	signInButton         string
	emailInput           string
	passwordInput        string
	userNameSubmitBtn    string
	passSubmitBtn        string
	staySignInModal      string
	acceptButton         string
	emailScreenHeader    string
	userDisplayName      string
	passwordScreenHeader string
}{
	signInButton:         `text="Sign in"`,
	emailInput:           `input[type="email"]`,
	passwordInput:        `input[type="password"]`,
	userNameSubmitBtn:    `input[type="submit"]`,
	passSubmitBtn:        `button[type="submit"]`,
	staySignInModal:      `#kmsiTitle`,
	acceptButton:         `[data-testid="textButtonContainer"] >> #acceptButton`,
	emailScreenHeader:    `div#loginHeader:has-text("Sign in")`,
	userDisplayName:      `div#userDisplayName`,
	passwordScreenHeader: `div#loginHeader:has-text("Enter password")`,
}

// LoginTimeouts bound each kind of wait in the login flow.
type LoginTimeouts struct {
	Interaction time.Duration // waits before clicking or filling
	Presence    time.Duration // screen header and interstitial checks
	Load        time.Duration // post-login load event
}

// DefaultLoginTimeouts returns the timeouts the hosted sign-in flow needs.
func DefaultLoginTimeouts() LoginTimeouts {
	return LoginTimeouts{
		Interaction: 30 * time.Second,
		Presence:    browser.DefaultVisibleTimeout,
		Load:        browser.DefaultLoadTimeout,
	}
}

// LoginOptions tune a single Login call.
type LoginOptions struct {
	// SkipLoadCheck skips waiting for the load event after the last step.
	SkipLoadCheck bool
}

// LoginPage drives the multi-step hosted sign-in form.
type LoginPage struct {
	page     playwright.Page
	actions  *browser.Actions
	logger   *logrus.Logger
	timeouts LoginTimeouts
	stage    LoginStage
}

// NewLoginPage - creates the sign-in page object for page
func NewLoginPage(page playwright.Page, actions *browser.Actions, logger *logrus.Logger) *LoginPage {
	return &LoginPage{
		page:     page,
		actions:  actions,
		logger:   logger,
		timeouts: DefaultLoginTimeouts(),
	}
}

// WithTimeouts replaces the default timeouts.
func (l *LoginPage) WithTimeouts(t LoginTimeouts) *LoginPage {
	l.timeouts = t
	return l
}

// Stage returns the last stage the flow reached.
func (l *LoginPage) Stage() LoginStage {
	return l.stage
}

// Login walks the sign-in screens in order. No step is retried; the returned
// error names the stage that failed.
func (l *LoginPage) Login(ctx context.Context, creds *entities.Credentials, opts LoginOptions) error {
	l.stage = StageSignInPrompt
	if err := l.login(ctx, creds, opts); err != nil {
		return fmt.Errorf("login failed at %s: %w", l.stage, err)
	}
	l.logger.WithField("username", creds.Username()).Info("logged in")
	return nil
}

func (l *LoginPage) login(ctx context.Context, creds *entities.Credentials, opts LoginOptions) error {
	page := browser.OnPage(l.page)
	t := l.timeouts

	if err := l.actions.Click(ctx, page, browser.Sel(loginLocators.signInButton), t.Interaction); err != nil {
		return err
	}
	if err := l.actions.RequireVisible(ctx, page, browser.Sel(loginLocators.emailScreenHeader), t.Presence, ErrEmailScreen); err != nil {
		return err
	}

	l.stage = StageEmailEntry
	l.logger.Info("entering email")
	if err := l.actions.Fill(ctx, page, browser.Sel(loginLocators.emailInput), creds.Username(), t.Interaction); err != nil {
		return err
	}
	if err := l.actions.Click(ctx, page, browser.Sel(loginLocators.userNameSubmitBtn), t.Interaction); err != nil {
		return err
	}

	displayed, err := l.page.Locator(loginLocators.userDisplayName).TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(float64(t.Interaction.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to read displayed account name: %w", err)
	}
	if displayed = strings.TrimSpace(displayed); displayed != creds.Username() {
		return &UsernameMismatchError{Displayed: displayed, Expected: creds.Username()}
	}

	l.stage = StagePasswordEntry
	if err := l.actions.RequireVisible(ctx, page, browser.Sel(loginLocators.passwordScreenHeader), t.Presence, ErrPasswordScreen); err != nil {
		return err
	}
	l.logger.Info("entering password")
	if err := l.actions.Fill(ctx, page, browser.Sel(loginLocators.passwordInput), creds.Password(), t.Interaction); err != nil {
		return err
	}
	if err := l.actions.Click(ctx, page, browser.Sel(loginLocators.passSubmitBtn), t.Interaction); err != nil {
		return err
	}

	if l.actions.WaitVisible(ctx, page, browser.Sel(loginLocators.staySignInModal), t.Presence) {
		l.stage = StageStaySignedIn
		if err := l.acceptStaySignedIn(ctx, page); err != nil {
			return err
		}
	}

	if !opts.SkipLoadCheck && !l.actions.HasPageLoaded(ctx, l.page, t.Load) {
		return ErrPostLoginLoad
	}
	l.stage = StageLoggedIn
	return nil
}

func (l *LoginPage) acceptStaySignedIn(ctx context.Context, page browser.PageContext) error {
	title, err := l.page.Locator(loginLocators.staySignInModal).TextContent()
	if err != nil {
		return fmt.Errorf("failed to read interstitial title: %w", err)
	}
	if title = strings.TrimSpace(title); title != StaySignedInTitle {
		l.logger.WithField("title", title).Warn("unexpected interstitial title, leaving it open")
		return nil
	}

	accept := browser.Sel(loginLocators.acceptButton)
	if err := l.actions.RequireVisible(ctx, page, accept, l.timeouts.Presence, ErrAcceptButton); err != nil {
		return err
	}
	l.logger.Info("accepting stay signed in")
	return l.actions.Click(ctx, page, accept, l.timeouts.Interaction)
}
