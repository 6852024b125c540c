package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Cookies returns the context cookies, optionally only those named name.
func (s *Session) Cookies(name string) ([]Cookie, error) {
	raw, err := s.bctx.Cookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		if name != "" && c.Name != name {
			continue
		}
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		cookies = append(cookies, cookie)
	}
	return cookies, nil
}

// SetCookies adds cookies to the context.
func (s *Session) SetCookies(params []CookieParam) error {
	cookies := make([]playwright.OptionalCookie, 0, len(params))
	for _, p := range params {
		if p.URL == "" && (p.Domain == "" || p.Path == "") {
			return fmt.Errorf("cookie %q needs url or domain and path", p.Name)
		}

		c := playwright.OptionalCookie{
			Name:     p.Name,
			Value:    p.Value,
			Expires:  p.Expires,
			HttpOnly: p.HTTPOnly,
			Secure:   p.Secure,
		}
		if p.URL != "" {
			c.URL = playwright.String(p.URL)
		} else {
			c.Domain = playwright.String(p.Domain)
			c.Path = playwright.String(p.Path)
		}
		if p.SameSite != "" {
			ss := playwright.SameSiteAttribute(p.SameSite)
			c.SameSite = &ss
		}
		cookies = append(cookies, c)
	}

	if err := s.bctx.AddCookies(cookies); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}
