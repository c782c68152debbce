// Package scraper harvests the registration portal's form metadata: input
// fields for steps 1 and 2, client-side validation patterns, and the UI
// component inventory. It extracts data only and holds no workflow state.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// DefaultPortalURL is the public registration form page.
const DefaultPortalURL = "https://udyamregistration.gov.in/UdyamRegistration.aspx"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Field describes one form input.
type Field struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
	MaxLength   string `json:"maxlength"`
	Pattern     string `json:"pattern"`
	Label       string `json:"label"`
}

// ValidationRule is one client-side format rule.
type ValidationRule struct {
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
}

// Button describes a clickable control.
type Button struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// Dropdown describes a select element and its options.
type Dropdown struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Checkbox describes a checkbox input.
type Checkbox struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// UIComponents is the page's control inventory.
type UIComponents struct {
	Buttons    []Button   `json:"buttons"`
	Dropdowns  []Dropdown `json:"dropdowns"`
	Checkboxes []Checkbox `json:"checkboxes"`
}

// FormSchema is the full extracted form description.
type FormSchema struct {
	Step1           []Field                   `json:"step1"`
	Step2           []Field                   `json:"step2"`
	ValidationRules map[string]ValidationRule `json:"validation_rules"`
	UIComponents    UIComponents              `json:"ui_components"`
}

var (
	step1IDPattern = regexp.MustCompile(`(?i)aadhaa?r|entrepreneur|name`)
	step2IDPattern = regexp.MustCompile(`(?i)pan`)
	panLiteral     = regexp.MustCompile(`\[A-Za-z\]\{5\}\[0-9\]\{4\}\[A-Za-z\]`)
)

// Scraper fetches and parses the portal page.
type Scraper struct {
	client *http.Client
	url    string
	logger *slog.Logger
}

type Option func(*Scraper)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		s.client = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// New builds a Scraper for the given page URL.
func New(url string, opts ...Option) *Scraper {
	s := &Scraper{
		client: http.DefaultClient,
		url:    url,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchSchema downloads the page and extracts the form schema.
func (s *Scraper) FetchSchema(ctx context.Context) (*FormSchema, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	s.logger.InfoContext(ctx, "fetching registration page", "url", s.url)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}

	return ParseSchema(resp.Body)
}

// ParseSchema extracts the form schema from an HTML document.
func ParseSchema(r io.Reader) (*FormSchema, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p := newPage(doc)
	schema := &FormSchema{
		Step1:           p.fields(step1IDPattern),
		Step2:           p.fields(step2IDPattern),
		ValidationRules: p.validationRules(),
		UIComponents:    p.uiComponents(),
	}
	return schema, nil
}

// page holds the node collections gathered in one document walk.
type page struct {
	inputs  []*html.Node
	selects []*html.Node
	buttons []*html.Node
	scripts []string
	labels  map[string]string // label "for" attribute -> text
}

func newPage(doc *html.Node) *page {
	p := &page{labels: make(map[string]string)}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "input":
				p.inputs = append(p.inputs, n)
				if attr(n, "type") == "submit" {
					p.buttons = append(p.buttons, n)
				}
			case "select":
				p.selects = append(p.selects, n)
			case "button":
				p.buttons = append(p.buttons, n)
			case "script":
				p.scripts = append(p.scripts, text(n))
			case "label":
				if forID := attr(n, "for"); forID != "" {
					p.labels[forID] = text(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return p
}

// fields returns the inputs whose id matches the step's pattern.
func (p *page) fields(idPattern *regexp.Regexp) []Field {
	var fields []Field
	for _, n := range p.inputs {
		id := attr(n, "id")
		if id == "" || !idPattern.MatchString(id) {
			continue
		}
		inputType := attr(n, "type")
		if inputType == "" {
			inputType = "text"
		}
		fields = append(fields, Field{
			ID:          id,
			Name:        attr(n, "name"),
			Type:        inputType,
			Placeholder: attr(n, "placeholder"),
			Required:    hasAttr(n, "required"),
			MaxLength:   attr(n, "maxlength"),
			Pattern:     attr(n, "pattern"),
			Label:       p.labelFor(n),
		})
	}
	return fields
}

// validationRules starts from the known form rules and overrides the PAN
// pattern if the page's scripts carry one inline.
func (p *page) validationRules() map[string]ValidationRule {
	rules := map[string]ValidationRule{
		"aadhaar": {Pattern: `\d{12}`, Description: "12-digit Aadhaar number"},
		"pan":     {Pattern: `[A-Za-z]{5}[0-9]{4}[A-Za-z]{1}`, Description: "PAN format: ABCDE1234F"},
		"otp":     {Pattern: `\d{6}`, Description: "6-digit OTP"},
	}
	for _, script := range p.scripts {
		if match := panLiteral.FindString(script); match != "" {
			rule := rules["pan"]
			rule.Pattern = match
			rules["pan"] = rule
			break
		}
	}
	return rules
}

func (p *page) uiComponents() UIComponents {
	components := UIComponents{
		Buttons:    []Button{},
		Dropdowns:  []Dropdown{},
		Checkboxes: []Checkbox{},
	}

	for _, n := range p.buttons {
		label := text(n)
		if label == "" {
			label = attr(n, "value")
		}
		buttonType := attr(n, "type")
		if buttonType == "" {
			buttonType = "button"
		}
		components.Buttons = append(components.Buttons, Button{
			ID:   attr(n, "id"),
			Text: label,
			Type: buttonType,
		})
	}

	for _, n := range p.selects {
		dropdown := Dropdown{
			ID:      attr(n, "id"),
			Name:    attr(n, "name"),
			Options: []string{},
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "option" {
				dropdown.Options = append(dropdown.Options, text(c))
			}
		}
		components.Dropdowns = append(components.Dropdowns, dropdown)
	}

	for _, n := range p.inputs {
		if attr(n, "type") != "checkbox" {
			continue
		}
		components.Checkboxes = append(components.Checkboxes, Checkbox{
			ID:      attr(n, "id"),
			Name:    attr(n, "name"),
			Checked: hasAttr(n, "checked"),
		})
	}
	return components
}

// labelFor resolves an input's label via its "for" attribute, falling back
// to a label element sharing the input's parent.
func (p *page) labelFor(n *html.Node) string {
	if id := attr(n, "id"); id != "" {
		if label, ok := p.labels[id]; ok {
			return label
		}
	}
	if n.Parent != nil {
		for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "label" {
				return text(c)
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
