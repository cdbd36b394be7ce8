package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// ErrUnsupportedContext is returned when a helper gets a context it cannot drive.
var ErrUnsupportedContext = errors.New("unsupported execution context")

// Kind identifies an execution context variant
type Kind int

const (
	KindPage Kind = iota + 1
	KindFrame
	KindElement
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindFrame:
		return "frame"
	case KindElement:
		return "element"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Context is where selectors are resolved and keyboard input is sent.
// The variants are PageContext, FrameContext and ElementContext.
type Context interface {
	Kind() Kind

	// Locate resolves selector inside the context
	Locate(selector string) (playwright.Locator, error)

	// Keyboard returns the keyboard of the page that owns the context
	Keyboard() (playwright.Keyboard, error)
}

// PageContext drives the top-level document of a page.
type PageContext struct {
	Page playwright.Page
}

// OnPage returns a context for the top-level document of page.
func OnPage(page playwright.Page) PageContext {
	return PageContext{Page: page}
}

func (c PageContext) Kind() Kind { return KindPage }

func (c PageContext) Locate(selector string) (playwright.Locator, error) {
	if c.Page == nil {
		return nil, fmt.Errorf("%w: page context without a page", ErrUnsupportedContext)
	}
	if selector == "" {
		return nil, fmt.Errorf("%w: empty selector on page", ErrUnsupportedContext)
	}
	return c.Page.Locator(selector), nil
}

func (c PageContext) Keyboard() (playwright.Keyboard, error) {
	if c.Page == nil {
		return nil, fmt.Errorf("%w: page context without a page", ErrUnsupportedContext)
	}
	return c.Page.Keyboard(), nil
}

// FrameContext drives a document embedded in an iframe of Page.
type FrameContext struct {
	Page  playwright.Page
	Frame playwright.FrameLocator
}

// InFrame returns a context for the iframe matched by frameSelector on page.
func InFrame(page playwright.Page, frameSelector string) FrameContext {
	return FrameContext{Page: page, Frame: page.FrameLocator(frameSelector)}
}

func (c FrameContext) Kind() Kind { return KindFrame }

func (c FrameContext) Locate(selector string) (playwright.Locator, error) {
	if c.Frame == nil {
		return nil, fmt.Errorf("%w: frame context without a frame", ErrUnsupportedContext)
	}
	if selector == "" {
		return nil, fmt.Errorf("%w: empty selector in frame", ErrUnsupportedContext)
	}
	return c.Frame.Locator(selector), nil
}

func (c FrameContext) Keyboard() (playwright.Keyboard, error) {
	if c.Page == nil {
		return nil, fmt.Errorf("%w: frame context without an owning page", ErrUnsupportedContext)
	}
	return c.Page.Keyboard(), nil
}

// ElementContext drives an already resolved element. An empty selector targets
// the element itself.
type ElementContext struct {
	Page    playwright.Page
	Element playwright.Locator
}

// OnElement returns a context rooted at element, which lives on page.
func OnElement(page playwright.Page, element playwright.Locator) ElementContext {
	return ElementContext{Page: page, Element: element}
}

func (c ElementContext) Kind() Kind { return KindElement }

func (c ElementContext) Locate(selector string) (playwright.Locator, error) {
	if c.Element == nil {
		return nil, fmt.Errorf("%w: element context without an element", ErrUnsupportedContext)
	}
	if selector == "" {
		return c.Element, nil
	}
	return c.Element.Locator(selector), nil
}

func (c ElementContext) Keyboard() (playwright.Keyboard, error) {
	if c.Page == nil {
		return nil, fmt.Errorf("%w: element context without an owning page", ErrUnsupportedContext)
	}
	return c.Page.Keyboard(), nil
}

// Ref names a target either by selector or by an already resolved locator.
type Ref struct {
	Selector string
	Locator  playwright.Locator
}

// Sel refers to the element matched by selector.
func Sel(selector string) Ref {
	return Ref{Selector: selector}
}

// Handle refers to a resolved locator.
func Handle(locator playwright.Locator) Ref {
	return Ref{Locator: locator}
}

func (r Ref) String() string {
	if r.Locator != nil {
		return "<resolved locator>"
	}
	return r.Selector
}

func resolve(c Context, ref Ref) (playwright.Locator, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil context", ErrUnsupportedContext)
	}
	if ref.Locator != nil {
		return ref.Locator, nil
	}
	return c.Locate(ref.Selector)
}
