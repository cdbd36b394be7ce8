package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

const (
	DefaultVisibleTimeout = 2 * time.Second
	DefaultLoadTimeout    = 60 * time.Second
)

var (
	// ErrNotVisible is returned when a target does not become visible in time.
	ErrNotVisible = errors.New("element did not become visible")

	// ErrNotLoaded is returned when a page misses its load event.
	ErrNotLoaded = errors.New("page did not reach the load state")
)

// Actions wraps every interaction in a visibility wait.
type Actions struct {
	logger *logrus.Logger
}

// NewActions - creates the action helpers
func NewActions(logger *logrus.Logger) *Actions {
	return &Actions{logger: logger}
}

func (a *Actions) entry(c Context, ref Ref) *logrus.Entry {
	fields := logrus.Fields{"selector": ref.String()}
	if c != nil {
		fields["context"] = c.Kind().String()
	}
	return a.logger.WithFields(fields)
}

// WaitVisible polls until the target is visible and reports false on timeout.
// It never interacts with the target.
func (a *Actions) WaitVisible(ctx context.Context, c Context, ref Ref, timeout time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	locator, err := resolve(c, ref)
	if err != nil {
		a.entry(c, ref).WithError(err).Debug("cannot resolve target")
		return false
	}
	if err := waitForVisible(locator, timeout); err != nil {
		a.entry(c, ref).WithField("timeout", timeout).Debug("target not visible")
		return false
	}
	return true
}

// AssertVisible is WaitVisible for mandatory targets. A miss is logged at Warn;
// the caller decides which screen failed.
func (a *Actions) AssertVisible(ctx context.Context, c Context, ref Ref, timeout time.Duration) bool {
	if a.WaitVisible(ctx, c, ref, timeout) {
		return true
	}
	a.entry(c, ref).WithField("timeout", timeout).Warn("required target not visible")
	return false
}

// RequireVisible turns a failed AssertVisible into failure.
func (a *Actions) RequireVisible(ctx context.Context, c Context, ref Ref, timeout time.Duration, failure error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !a.AssertVisible(ctx, c, ref, timeout) {
		return failure
	}
	return nil
}

// Click waits for the target, clicks it and then presses keys in order on the
// owning page keyboard.
func (a *Actions) Click(ctx context.Context, c Context, ref Ref, timeout time.Duration, keys ...string) error {
	locator, err := a.visible(ctx, c, ref, timeout)
	if err != nil {
		return err
	}

	a.entry(c, ref).Debug("click")
	if err := locator.Click(); err != nil {
		return fmt.Errorf("failed to click %s: %w", ref, err)
	}

	if len(keys) == 0 {
		return nil
	}
	keyboard, err := c.Keyboard()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := keyboard.Press(key); err != nil {
			return fmt.Errorf("failed to press %s after clicking %s: %w", key, ref, err)
		}
	}
	return nil
}

// Fill waits for the target and replaces its value in one step.
func (a *Actions) Fill(ctx context.Context, c Context, ref Ref, value string, timeout time.Duration) error {
	locator, err := a.visible(ctx, c, ref, timeout)
	if err != nil {
		return err
	}

	a.entry(c, ref).WithField("length", len(value)).Debug("fill")
	if err := locator.Fill(value); err != nil {
		return fmt.Errorf("failed to fill %s: %w", ref, err)
	}
	return nil
}

// Press waits for the target and sends keys to it in order.
func (a *Actions) Press(ctx context.Context, c Context, ref Ref, timeout time.Duration, keys ...string) error {
	locator, err := a.visible(ctx, c, ref, timeout)
	if err != nil {
		return err
	}

	for _, key := range keys {
		a.entry(c, ref).WithField("key", key).Debug("press")
		if err := locator.Press(key); err != nil {
			return fmt.Errorf("failed to press %s on %s: %w", key, ref, err)
		}
	}
	return nil
}

// TypeText focuses the target and emits text as real key events through the
// page keyboard. Some widgets ignore values assigned by Fill.
func (a *Actions) TypeText(ctx context.Context, c Context, selector string, text string, timeout time.Duration) error {
	if c == nil {
		return fmt.Errorf("%w for typeText", ErrUnsupportedContext)
	}
	keyboard, err := c.Keyboard()
	if err != nil {
		return fmt.Errorf("typeText: %w", err)
	}

	ref := Sel(selector)
	locator, err := a.visible(ctx, c, ref, timeout)
	if err != nil {
		return err
	}

	if err := locator.Click(); err != nil {
		return fmt.Errorf("failed to type text: focus %s: %w", ref, err)
	}
	a.entry(c, ref).WithField("length", len(text)).Debug("type")
	if err := keyboard.Type(text); err != nil {
		return fmt.Errorf("failed to type text: %w", err)
	}
	return nil
}

// HasPageLoaded waits for the load event of page and reports false on timeout.
func (a *Actions) HasPageLoaded(ctx context.Context, page playwright.Page, timeout time.Duration) bool {
	if ctx.Err() != nil || page == nil {
		return false
	}
	err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateLoad,
		Timeout: ms(timeout),
	})
	if err != nil {
		a.logger.WithError(err).WithField("url", page.URL()).Debug("page did not load")
		return false
	}
	return true
}

func (a *Actions) visible(ctx context.Context, c Context, ref Ref, timeout time.Duration) (playwright.Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locator, err := resolve(c, ref)
	if err != nil {
		return nil, err
	}
	if err := waitForVisible(locator, timeout); err != nil {
		a.entry(c, ref).WithError(err).Debug("target not visible")
		return nil, fmt.Errorf("%w: %s within %s", ErrNotVisible, ref, timeout)
	}
	return locator, nil
}

func waitForVisible(locator playwright.Locator, timeout time.Duration) error {
	return locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
}

// ms converts a timeout into the milliseconds Playwright expects.
func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
