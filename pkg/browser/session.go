package browser

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is the live page of the persistent browser profile. Actions are
// not serialized; concurrent conflicting actions race as they would in a
// single browser tab.
type Session struct {
	page    playwright.Page
	bctx    playwright.BrowserContext
	crashed atomic.Bool

	// CreatedAt is the launch time of this Session
	CreatedAt time.Time
}

func newSession(page playwright.Page, bctx playwright.BrowserContext) *Session {
	return &Session{
		page:      page,
		bctx:      bctx,
		CreatedAt: time.Now(),
	}
}

// Page exposes the underlying page handle. Its identity is stable for the
// lifetime of the Session.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Info returns the current URL and title.
func (s *Session) Info() (*PageInfo, error) {
	title, err := s.page.Title()
	if err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}
	return &PageInfo{URL: s.page.URL(), Title: title}, nil
}

func (s *Session) safeURL() (url string) {
	defer func() {
		if recover() != nil {
			url = ""
		}
	}()
	return s.page.URL()
}

// Navigate loads url, returning as soon as the response is committed. It then
// gives the document a short window to parse so the title is available.
func (s *Session) Navigate(url string, timeout float64) (*PageInfo, error) {
	if timeout <= 0 {
		timeout = NavigateTimeout
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateCommit,
		Timeout:   playwright.Float(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	// best effort; slow pages still report whatever title exists
	_ = s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(loadStateTimeout),
	})

	title, err := s.page.Title()
	if err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}
	return &PageInfo{URL: url, Title: title}, nil
}

// GoBack navigates one step back in history.
func (s *Session) GoBack(timeout float64) (*PageInfo, error) {
	_, err := s.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateCommit,
		Timeout:   playwright.Float(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("go back failed: %w", err)
	}
	return s.Info()
}

// GoForward navigates one step forward in history.
func (s *Session) GoForward(timeout float64) (*PageInfo, error) {
	_, err := s.page.GoForward(playwright.PageGoForwardOptions{
		WaitUntil: playwright.WaitUntilStateCommit,
		Timeout:   playwright.Float(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("go forward failed: %w", err)
	}
	return s.Info()
}

// locate returns the first element matching selector.
func (s *Session) locate(selector string) playwright.Locator {
	return s.page.Locator(selector).First()
}

// waitVisible waits up to timeout for selector to become visible.
func (s *Session) waitVisible(selector string, timeout float64) (playwright.Locator, error) {
	loc := s.locate(selector)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("element %q not visible: %w", selector, err)
	}
	return loc, nil
}

// Click waits for selector to be visible, then clicks it without waiting
// for any navigation it triggers.
func (s *Session) Click(selector string, timeout float64) error {
	if timeout <= 0 {
		timeout = ActionTimeout
	}

	loc, err := s.waitVisible(selector, timeout)
	if err != nil {
		return err
	}

	err = loc.Click(playwright.LocatorClickOptions{
		Timeout:     playwright.Float(timeout),
		NoWaitAfter: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Type waits for selector to be visible, then replaces its value with text.
func (s *Session) Type(selector, text string, timeout float64) error {
	if timeout <= 0 {
		timeout = ActionTimeout
	}

	loc, err := s.waitVisible(selector, timeout)
	if err != nil {
		return err
	}

	if err := loc.Fill(text, playwright.LocatorFillOptions{Timeout: playwright.Float(timeout)}); err != nil {
		return fmt.Errorf("type failed: %w", err)
	}
	return nil
}

// Hover moves the pointer over selector.
func (s *Session) Hover(selector string, timeout float64) error {
	err := s.locate(selector).Hover(playwright.LocatorHoverOptions{Timeout: playwright.Float(timeout)})
	if err != nil {
		return fmt.Errorf("hover failed: %w", err)
	}
	return nil
}

// WaitForSelector waits until selector reaches state (attached, detached,
// visible or hidden).
func (s *Session) WaitForSelector(selector, state string, timeout float64) error {
	st := playwright.WaitForSelectorState(state)
	err := s.locate(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   &st,
		Timeout: playwright.Float(timeout),
	})
	if err != nil {
		return fmt.Errorf("wait for %q (%s) failed: %w", selector, state, err)
	}
	return nil
}

// ElementText returns the text content of the first match.
func (s *Session) ElementText(selector string, timeout float64) (string, error) {
	text, err := s.locate(selector).TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(timeout),
	})
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}

// ElementAttribute returns the named attribute of the first match. The
// boolean is false when the element has no such attribute.
func (s *Session) ElementAttribute(selector, attribute string, timeout float64) (string, bool, error) {
	v, err := s.locate(selector).Evaluate("(el, name) => el.getAttribute(name)", attribute,
		playwright.LocatorEvaluateOptions{Timeout: playwright.Float(timeout)})
	if err != nil {
		return "", false, fmt.Errorf("attribute lookup failed: %w", err)
	}
	if v == nil {
		return "", false, nil
	}
	return fmt.Sprint(v), true, nil
}

// SelectOption selects an option of a <select> by value or, if value is
// empty, by label. It returns the values now selected.
func (s *Session) SelectOption(selector, value, label string, timeout float64) ([]string, error) {
	values := playwright.SelectOptionValues{}
	if value != "" {
		values.Values = &[]string{value}
	} else {
		values.Labels = &[]string{label}
	}

	selected, err := s.locate(selector).SelectOption(values, playwright.LocatorSelectOptionOptions{
		Timeout: playwright.Float(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("select option failed: %w", err)
	}
	return selected, nil
}

// FillForm fills each field in order, stopping at the first failure.
func (s *Session) FillForm(fields []FormField, timeout float64) ([]string, error) {
	filled := make([]string, 0, len(fields))
	for _, f := range fields {
		err := s.locate(f.Selector).Fill(f.Value, playwright.LocatorFillOptions{
			Timeout: playwright.Float(timeout),
		})
		if err != nil {
			return filled, fmt.Errorf("fill %q failed: %w", f.Selector, err)
		}
		filled = append(filled, f.Selector)
	}
	return filled, nil
}

// ScrollTo scrolls selector into view.
func (s *Session) ScrollTo(selector string, timeout float64) error {
	err := s.locate(selector).ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(timeout),
	})
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// ScrollBy scrolls the window by (x, y) pixels and returns the new offset.
func (s *Session) ScrollBy(x, y int) (*ScrollPosition, error) {
	v, err := s.page.Evaluate(`([x, y]) => {
		window.scrollBy(x, y);
		return [window.scrollX, window.scrollY];
	}`, []int{x, y})
	if err != nil {
		return nil, fmt.Errorf("scroll failed: %w", err)
	}

	pos := &ScrollPosition{}
	if arr, ok := v.([]interface{}); ok && len(arr) == 2 {
		pos.X = toInt(arr[0])
		pos.Y = toInt(arr[1])
	}
	return pos, nil
}

// Evaluate runs script in the page and returns its JSON-compatible result.
func (s *Session) Evaluate(script string) (interface{}, error) {
	result, err := s.page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("script evaluation failed: %w", err)
	}
	return result, nil
}

// Screenshot captures the page as PNG at path with animations disabled.
func (s *Session) Screenshot(path string, fullPage bool) ([]byte, error) {
	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:       playwright.String(path),
		FullPage:   playwright.Bool(fullPage),
		Timeout:    playwright.Float(ScreenshotTimeout),
		Animations: playwright.ScreenshotAnimationsDisabled,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

// SetViewport resizes the page viewport.
func (s *Session) SetViewport(width, height int) error {
	if err := s.page.SetViewportSize(width, height); err != nil {
		return fmt.Errorf("set viewport failed: %w", err)
	}
	return nil
}

// toInt converts a number decoded from a page evaluation.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(math.Round(n))
	default:
		return 0
	}
}
