package browser

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"excel_automation/infrastructure/config"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Options configure one browser session.
type Options struct {
	BrowserName string
	Headless    bool
	SlowMo      time.Duration
	BaseURL     string

	ActionTimeout     time.Duration
	NavigationTimeout time.Duration

	// RecordVideo records every page into a temporary directory. Close decides
	// whether the recordings are kept.
	RecordVideo bool
}

// OptionsFromConfig returns the session options for cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BrowserName:       cfg.BrowserName,
		Headless:          cfg.Headless,
		SlowMo:            cfg.SlowMo,
		BaseURL:           cfg.BaseURL,
		ActionTimeout:     cfg.ActionTimeout,
		NavigationTimeout: cfg.NavigationTimeout,
		RecordVideo:       true,
	}
}

// Session owns one Playwright driver, browser, isolated context and its pages.
type Session struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	context  playwright.BrowserContext
	page     playwright.Page
	logger   *logrus.Logger
	videoDir string

	pages      []playwright.Page
	pagesMutex sync.Mutex
}

// Launch starts the driver, launches the browser and opens the first page.
func Launch(opts Options, logger *logrus.Logger) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	s := &Session{pw: pw, logger: logger}
	if err := s.open(opts); err != nil {
		s.release()
		return nil, err
	}
	return s, nil
}

func (s *Session) open(opts Options) error {
	var browserType playwright.BrowserType
	switch opts.BrowserName {
	case "", config.BrowserChromium:
		browserType = s.pw.Chromium
	case config.BrowserFirefox:
		browserType = s.pw.Firefox
	case config.BrowserWebKit:
		browserType = s.pw.WebKit
	default:
		return fmt.Errorf("unknown browser %q", opts.BrowserName)
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	s.browser = browser

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	}
	if opts.BaseURL != "" {
		contextOptions.BaseURL = playwright.String(opts.BaseURL)
	}
	// Only Chromium knows the clipboard permissions.
	if opts.BrowserName == "" || opts.BrowserName == config.BrowserChromium {
		contextOptions.Permissions = []string{"clipboard-read"}
	}
	if opts.RecordVideo {
		dir, err := os.MkdirTemp("", "excel-video-*")
		if err != nil {
			return fmt.Errorf("failed to create video directory: %w", err)
		}
		s.videoDir = dir
		contextOptions.RecordVideo = &playwright.RecordVideo{Dir: dir}
	}

	context, err := browser.NewContext(contextOptions)
	if err != nil {
		return fmt.Errorf("failed to create context: %w", err)
	}
	s.context = context
	if opts.ActionTimeout > 0 {
		context.SetDefaultTimeout(float64(opts.ActionTimeout.Milliseconds()))
	}
	if opts.NavigationTimeout > 0 {
		context.SetDefaultNavigationTimeout(float64(opts.NavigationTimeout.Milliseconds()))
	}

	context.OnPage(func(newPage playwright.Page) {
		s.pagesMutex.Lock()
		defer s.pagesMutex.Unlock()

		s.pages = append(s.pages, newPage)
		s.logger.WithField("url", newPage.URL()).Debug("page opened")

		newPage.OnClose(func(closedPage playwright.Page) {
			s.pagesMutex.Lock()
			defer s.pagesMutex.Unlock()

			for i, p := range s.pages {
				if p == closedPage {
					s.pages = append(s.pages[:i], s.pages[i+1:]...)
					break
				}
			}
		})
	})

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	s.page = page

	s.logger.WithFields(logrus.Fields{
		"browser":  browserType.Name(),
		"headless": opts.Headless,
		"base_url": opts.BaseURL,
	}).Info("browser session started")
	return nil
}

// Page returns the first page of the session.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Pages returns the pages that are currently open.
func (s *Session) Pages() []playwright.Page {
	s.pagesMutex.Lock()
	defer s.pagesMutex.Unlock()

	pages := make([]playwright.Page, len(s.pages))
	copy(pages, s.pages)
	if len(pages) == 0 && s.page != nil {
		pages = append(pages, s.page)
	}
	return pages
}

// Goto navigates the first page to path, resolved against the base URL, and
// waits for the load event.
func (s *Session) Goto(path string) error {
	_, err := s.page.Goto(path, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", path, err)
	}
	return nil
}

// Screenshot captures every open page and returns the written files. pathFor
// receives the page index.
func (s *Session) Screenshot(pathFor func(index int) string) ([]string, error) {
	var written []string
	var firstErr error
	for i, page := range s.Pages() {
		if page.IsClosed() {
			continue
		}
		path := pathFor(i)
		_, err := page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(path),
			FullPage: playwright.Bool(true),
		})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to take screenshot: %w", err)
			}
			continue
		}
		written = append(written, path)
	}
	return written, firstErr
}

// Close releases the context, browser and driver. Recorded videos are handed to
// keep when it is non-nil and deleted otherwise. Errors from already closed
// targets are ignored.
func (s *Session) Close(keep func(src string) (string, error)) ([]string, error) {
	var closeErr error

	var videos []string
	if s.videoDir != "" {
		for _, page := range s.Pages() {
			if path, err := page.Video().Path(); err == nil && path != "" {
				videos = append(videos, path)
			}
		}
	}

	if s.context != nil {
		if err := s.context.Close(); err != nil && !isClosedErr(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		s.context = nil
	}

	var kept []string
	for _, path := range videos {
		if keep == nil {
			continue
		}
		dst, err := keep(path)
		if err != nil {
			s.logger.WithError(err).WithField("video", path).Warn("failed to keep video")
			continue
		}
		kept = append(kept, dst)
	}

	if err := s.release(); err != nil && closeErr == nil {
		closeErr = err
	}
	return kept, closeErr
}

func (s *Session) release() error {
	var releaseErr error

	if s.context != nil {
		if err := s.context.Close(); err != nil && !isClosedErr(err) {
			releaseErr = fmt.Errorf("failed to close context: %w", err)
		}
		s.context = nil
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil && !isClosedErr(err) && releaseErr == nil {
			releaseErr = fmt.Errorf("failed to close browser: %w", err)
		}
		s.browser = nil
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && releaseErr == nil {
			releaseErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		s.pw = nil
	}

	if s.videoDir != "" {
		_ = os.RemoveAll(s.videoDir)
		s.videoDir = ""
	}
	return releaseErr
}

func isClosedErr(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}
