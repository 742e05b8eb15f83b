// Package snapshot captures webpages and distills them into the textual
// snapshot the audit generator prompts with.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/liftlens/liftlens/internal/domain"
)

const (
	maxBodyBytes    = 2 << 20
	maxContentRunes = 12000
	userAgent       = "liftlens/1.0 (+https://github.com/liftlens/liftlens)"
)

// Source implements domain.SnapshotSource over plain HTTP.
type Source struct {
	client   *http.Client
	detector lingua.LanguageDetector
	now      func() time.Time
}

type Option func(*Source)

// WithClient overrides the HTTP client, for tests.
func WithClient(client *http.Client) Option {
	return func(s *Source) { s.client = client }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

func New(opts ...Option) *Source {
	s := &Source{
		client: &http.Client{Timeout: 30 * time.Second},
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllSpokenLanguages().
			Build(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture fetches rawURL and distills it into a snapshot.
func (s *Source) Capture(ctx context.Context, rawURL string) (*domain.Snapshot, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	html, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	bodyText := normalizeText(doc.Find("body").Text())

	snap := &domain.Snapshot{
		URL:          rawURL,
		Title:        normalizeText(doc.Find("title").First().Text()),
		Description:  metaDescription(doc),
		Headings:     headings(doc),
		CTAs:         callsToAction(doc),
		Forms:        formSummaries(doc),
		Images:       imageSummary(doc),
		SocialProof:  socialProof(doc, bodyText),
		TrustSignals: trustSignals(doc, bodyText),
		Navigation:   navigationSummary(doc, bodyText),
		AboveFold:    aboveFold(doc),
		Sections:     sectionInventory(doc),
		Urgency:      urgencyMarkers(doc, bodyText),
		CapturedAt:   s.now().UTC().Format(time.RFC3339),
	}

	// Readability strips chrome the model should not audit: nav menus,
	// cookie banners, footers.
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), pageURL)
	if err == nil {
		if title := normalizeText(article.Title); title != "" {
			snap.Title = title
		}
		if snap.Description == "" {
			snap.Description = normalizeText(article.Excerpt)
		}
		snap.Content = truncateRunes(normalizeText(article.TextContent), maxContentRunes)
	}
	if snap.Content == "" {
		snap.Content = truncateRunes(bodyText, maxContentRunes)
	}

	if lang, ok := s.detector.DetectLanguageOf(snap.Content); ok {
		snap.Language = strings.ToLower(lang.IsoCode639_1().String())
	}

	return snap, nil
}

func (s *Source) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	return string(body), nil
}

func metaDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		return normalizeText(desc)
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return normalizeText(desc)
	}
	return ""
}

func headings(doc *goquery.Document) []string {
	var out []string
	doc.Find("h1,h2,h3").Each(func(_ int, sel *goquery.Selection) {
		if text := normalizeText(sel.Text()); text != "" {
			out = append(out, goquery.NodeName(sel)+": "+text)
		}
	})
	return out
}

// callsToAction collects the labels of every clickable element a visitor is
// asked to act on: buttons, submit inputs and link-styled buttons.
func callsToAction(doc *goquery.Document) []string {
	seen := map[string]bool{}
	var out []string
	add := func(label string) {
		label = normalizeText(label)
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		out = append(out, label)
	}

	doc.Find("button").Each(func(_ int, sel *goquery.Selection) {
		add(sel.Text())
	})
	doc.Find(`input[type="submit"],input[type="button"]`).Each(func(_ int, sel *goquery.Selection) {
		if val, ok := sel.Attr("value"); ok {
			add(val)
		}
	})
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		if strings.Contains(strings.ToLower(class), "btn") || strings.Contains(strings.ToLower(class), "button") || strings.Contains(strings.ToLower(class), "cta") {
			add(sel.Text())
		}
	})
	return out
}

// formSummaries describes each form as "action: field, field, ..." so the
// model can judge friction without seeing markup.
func formSummaries(doc *goquery.Document) []string {
	var out []string
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		var fields []string
		form.Find("input,select,textarea").Each(func(_ int, field *goquery.Selection) {
			typ, _ := field.Attr("type")
			if typ == "hidden" || typ == "submit" || typ == "button" {
				return
			}
			name, ok := field.Attr("name")
			if !ok || name == "" {
				name, _ = field.Attr("placeholder")
			}
			if name = normalizeText(name); name != "" {
				fields = append(fields, name)
			}
		})
		action, _ := form.Attr("action")
		if action == "" {
			action = "(self)"
		}
		out = append(out, action+": "+strings.Join(fields, ", "))
	})
	return out
}

func imageSummary(doc *goquery.Document) domain.ImageSummary {
	var out domain.ImageSummary
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		out.Count++
		if alt, _ := img.Attr("alt"); normalizeText(alt) != "" {
			out.WithAltText++
		}
	})
	return out
}

var statPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+[%+]?\s*(customers?|users?|clients?|companies)`),
	regexp.MustCompile(`(?i)\d+[km]?\+?\s*(downloads?|installs?)`),
	regexp.MustCompile(`(?i)\$?\d+[kmb]?\+?\s*(saved|revenue|growth)`),
	regexp.MustCompile(`(?i)\d+\s*(years?|countries|integrations?)`),
}

// socialProof collects testimonial snippets and stat claims ("4,000 product
// teams", "30% growth") the page leans on for credibility.
func socialProof(doc *goquery.Document, bodyText string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	doc.Find(`blockquote,[class*="testimonial"],[class*="review"],[class*="quote"]`).
		EachWithBreak(func(i int, sel *goquery.Selection) bool {
			add(truncateRunes(normalizeText(sel.Text()), 300))
			return i < 4
		})
	for _, pattern := range statPatterns {
		for _, match := range pattern.FindAllString(bodyText, 3) {
			add(normalizeText(match))
		}
	}
	return out
}

var (
	securityKeywords  = []string{"ssl", "secure", "encrypted", "gdpr", "hipaa", "soc2", "pci"}
	certKeywords      = []string{"certified", "accredited", "verified", "approved", "award"}
	guaranteeKeywords = []string{
		"money back", "guarantee", "refund", "risk-free", "no risk",
		"free trial", "cancel anytime", "no credit card",
	}
)

// trustSignals reports which anxiety-reducing markers appear on the page:
// security badges in image alt/src text, certification wording, guarantees.
func trustSignals(doc *goquery.Document, bodyText string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		alt, _ := img.Attr("alt")
		src, _ := img.Attr("src")
		haystack := strings.ToLower(alt + " " + src)
		for _, kw := range securityKeywords {
			if strings.Contains(haystack, kw) {
				add(strings.ToUpper(kw))
			}
		}
	})

	lower := strings.ToLower(bodyText)
	for _, kw := range certKeywords {
		if strings.Contains(lower, kw) {
			add(kw)
		}
	}
	for _, kw := range guaranteeKeywords {
		if strings.Contains(lower, kw) {
			add(kw)
		}
	}
	return out
}

var (
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern = regexp.MustCompile(`\+?[\d\s()-]{10,}`)
)

func navigationSummary(doc *goquery.Document, bodyText string) domain.NavigationSummary {
	var out domain.NavigationSummary
	doc.Find("nav a,header a").Each(func(_ int, link *goquery.Selection) {
		if out.LinkCount >= 15 {
			return
		}
		if normalizeText(link.Text()) != "" {
			out.LinkCount++
		}
	})
	out.HasContactInfo = doc.Find(`a[href^="tel:"],a[href^="mailto:"]`).Length() > 0 ||
		emailPattern.MatchString(bodyText) ||
		phonePattern.MatchString(bodyText)
	return out
}

// aboveFold approximates the first screen. There is no viewport over plain
// HTTP, so the hero container (the first h1's section, or the page header)
// stands in for it.
func aboveFold(doc *goquery.Document) domain.AboveFold {
	var out domain.AboveFold

	h1 := doc.Find("h1").First()
	out.MainHeadline = normalizeText(h1.Text())
	if next := h1.Next(); next.Length() > 0 {
		switch goquery.NodeName(next) {
		case "p", "h2", "div", "span":
			if text := normalizeText(next.Text()); len(text) > 10 && len(text) < 300 {
				out.Subheadline = text
			}
		}
	}

	fold := h1.Closest("section,header")
	if fold.Length() == 0 {
		fold = doc.Find("header").First()
	}
	if fold.Length() == 0 {
		fold = h1.Parent()
	}
	out.HasCTA = fold.Find(`button,input[type="submit"],a[class*="btn"],a[class*="cta"]`).Length() > 0
	out.HasImage = fold.Find("img").Length() > 0
	out.HasVideo = fold.Find(`video,iframe[src*="youtube"],iframe[src*="vimeo"]`).Length() > 0
	return out
}

func sectionInventory(doc *goquery.Document) []domain.SectionSummary {
	var out []domain.SectionSummary
	doc.Find("section,main > div").EachWithBreak(func(i int, section *goquery.Selection) bool {
		out = append(out, domain.SectionSummary{
			Heading:  normalizeText(section.Find("h1,h2,h3").First().Text()),
			HasForm:  section.Find("form").Length() > 0,
			HasCTA:   section.Find(`button,a[class*="btn"],a[class*="cta"]`).Length() > 0,
			HasImage: section.Find("img").Length() > 0,
			HasVideo: section.Find("video,iframe").Length() > 0,
		})
		return i < 9
	})
	return out
}

var (
	limitedOfferKeywords = []string{"limited", "only", "left", "hurry", "ending", "expires"}
	scarcityKeywords     = []string{"spots", "seats", "available", "remaining"}
)

// urgencyMarkers reports countdown widgets and time or scarcity wording.
func urgencyMarkers(doc *goquery.Document, bodyText string) []string {
	var out []string
	if doc.Find(`[class*="countdown"],[class*="timer"]`).Length() > 0 {
		out = append(out, "countdown")
	}
	lower := strings.ToLower(bodyText)
	for _, kw := range append(limitedOfferKeywords, scarcityKeywords...) {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
