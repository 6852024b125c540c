package report

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/entrhq/mcp-bridge/pkg/capture"
	"github.com/google/uuid"
)

// Options selects which detailed lists a report carries.
type Options struct {
	IncludeLinks  bool
	IncludeForms  bool
	IncludeImages bool
}

// Input is everything a report is built from.
type Input struct {
	URL     string
	Title   string
	HTML    string
	Console []capture.ConsoleEntry
	Network []capture.NetworkEntry
}

// Build analyzes the page HTML and captured diagnostics.
func Build(in Input, opts Options) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, _ := url.Parse(in.URL)

	r := &Report{
		ID:             uuid.NewString(),
		URL:            in.URL,
		Title:          in.Title,
		GeneratedAt:    time.Now().UTC(),
		Meta:           collectMeta(doc),
		Headings:       collectHeadings(doc),
		ConsoleErrors:  []capture.ConsoleEntry{},
		FailedRequests: []capture.NetworkEntry{},
	}
	if r.Title == "" {
		r.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	links := collectLinks(doc, base)
	forms := collectForms(doc)
	images := collectImages(doc)

	for _, e := range in.Console {
		if e.Type == "error" {
			r.ConsoleErrors = append(r.ConsoleErrors, e)
		}
	}
	for _, e := range in.Network {
		if e.Failed() {
			r.FailedRequests = append(r.FailedRequests, e)
		}
	}

	h1 := 0
	for _, h := range r.Headings {
		if h.Level == 1 {
			h1++
		}
	}

	r.Summary = Summary{
		Links:          len(links),
		Forms:          len(forms),
		Images:         len(images),
		Headings:       len(r.Headings),
		Scripts:        doc.Find("script").Length(),
		ConsoleErrors:  len(r.ConsoleErrors),
		FailedRequests: len(r.FailedRequests),
		HasSingleH1:    h1 == 1,
	}
	for _, l := range links {
		if l.External {
			r.Summary.ExternalLinks++
		}
	}
	for _, img := range images {
		if img.MissingAlt {
			r.Summary.ImagesMissingAlt++
		}
	}

	if opts.IncludeLinks {
		r.Links = links
	}
	if opts.IncludeForms {
		r.Forms = forms
	}
	if opts.IncludeImages {
		r.Images = images
	}
	return r, nil
}

func collectMeta(doc *goquery.Document) Meta {
	m := Meta{}
	m.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	m.Viewport, _ = doc.Find(`meta[name="viewport"]`).First().Attr("content")
	m.Canonical, _ = doc.Find(`link[rel="canonical"]`).First().Attr("href")
	m.Lang, _ = doc.Find("html").First().Attr("lang")
	return m
}

func collectHeadings(doc *goquery.Document) []Heading {
	headings := []Heading{}
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level, err := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(s), "h"))
		if err != nil {
			return
		}
		headings = append(headings, Heading{Level: level, Text: squash(s.Text())})
	})
	return headings
}

func collectLinks(doc *goquery.Document, base *url.URL) []Link {
	links := []Link{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") {
			return
		}

		link := Link{Text: squash(s.Text()), Href: href}
		if base != nil {
			if resolved, err := base.Parse(href); err == nil {
				link.Href = resolved.String()
				link.External = resolved.Host != "" && resolved.Host != base.Host
			}
		}
		links = append(links, link)
	})
	return links
}

func collectForms(doc *goquery.Document) []Form {
	forms := []Form{}
	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		f := Form{Fields: []Field{}}
		f.ID, _ = s.Attr("id")
		f.Action, _ = s.Attr("action")
		f.Method = strings.ToUpper(s.AttrOr("method", "get"))

		s.Find("input, select, textarea, button").Each(func(_ int, c *goquery.Selection) {
			field := Field{Tag: goquery.NodeName(c)}
			field.Type, _ = c.Attr("type")
			field.Name, _ = c.Attr("name")
			field.ID, _ = c.Attr("id")
			_, field.Required = c.Attr("required")
			f.Fields = append(f.Fields, field)
		})
		forms = append(forms, f)
	})
	return forms
}

func collectImages(doc *goquery.Document) []Image {
	images := []Image{}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, hasAlt := s.Attr("alt")
		images = append(images, Image{
			Src:        src,
			Alt:        alt,
			MissingAlt: !hasAlt || strings.TrimSpace(alt) == "",
		})
	})
	return images
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
