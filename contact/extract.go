// Package contact pulls postal address, phone number and e-mail address out
// of company web pages.
package contact

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

// Details is what could be found on one page. Empty fields were not found.
type Details struct {
	Address string
	Phone   string
	Email   string
	// Emails holds every valid address seen, best sources first.
	Emails []string
}

// Empty reports whether nothing at all was found.
func (d Details) Empty() bool {
	return d.Address == "" && d.Phone == "" && d.Email == ""
}

// Merge fills the empty fields of d from other.
func (d Details) Merge(other Details) Details {
	if d.Address == "" {
		d.Address = other.Address
	}
	if d.Phone == "" {
		d.Phone = other.Phone
	}
	if d.Email == "" {
		d.Email = other.Email
	}
	d.Emails = appendUnique(d.Emails, other.Emails...)
	return d
}

const (
	minSnippetLength = 6
	maxSnippetLength = 149
	minPhoneDigits   = 9
)

var (
	reAddressLabel = regexp.MustCompile(`(?i)direcci[oó]n|d[oó]nde estamos|domicilio|sede social`)
	rePhoneLabel   = regexp.MustCompile(`(?i)tel[eé]fono|ll[aá]manos|\btel\.|\btlf`)
	reEmailLabel   = regexp.MustCompile(`(?i)e-?mail|correo`)

	reContactSection = regexp.MustCompile(`(?i)contact|info|footer`)

	rePhone   = regexp.MustCompile(`(?:\+?\d{1,3}[\s\-()]*)?(?:\d{2,4}[\s\-()]*){2,3}\d{2,4}`)
	reDigit   = regexp.MustCompile(`\d`)
	reAddress = regexp.MustCompile(`(?i)(?:\bC/|\bCalle\b|\bAvda\.?|\bAvenida\b|\bPlaza\b|\bPza\.|\bPaseo\b|\bPol[ií]gono\b|\bCamino\b|\bCarretera\b|\bCtra\.|\bUrbanizaci[oó]n\b|\bRonda\b|\bTraves[ií]a\b)[^\n]{5,150}`)
	// next label or separator ends an address
	reAddressEnd  = regexp.MustCompile(`(?i)\s*(?:\btel[eé]fono\b|\btel\.|\btlf\b|\bfax\b|\be-?mail\b|\bcorreo\b|\bhorario\b|\|).*$`)
	reLabelPrefix = regexp.MustCompile(`(?i)^\s*(?:direcci[oó]n|d[oó]nde estamos|domicilio|sede social)\s*[:\-]?\s*`)
	reWhitespace  = regexp.MustCompile(`\s+`)

	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
		textPolicy.AddSpaceWhenStrippingTag(true)
	})
	return textPolicy
}

// VisibleText strips markup, scripts and styles and collapses whitespace.
func VisibleText(rawHTML string) string {
	text := html.UnescapeString(policy().Sanitize(rawHTML))
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// Extract looks for contact details in a page. Labelled snippets such as
// "Teléfono: ..." are preferred, then footer and contact sections, then the
// whole visible text.
func Extract(rawHTML string) Details {
	sources := [][]string{
		labelledSnippets(rawHTML, reAddressLabel),
		labelledSnippets(rawHTML, rePhoneLabel),
		labelledSnippets(rawHTML, reEmailLabel),
	}
	sections, mailtos := sectionsAndMailtos(rawHTML)
	full := VisibleText(rawHTML)

	var d Details
	for _, s := range sources[0] {
		if d.Address = AddressFromLabel(s); d.Address != "" {
			break
		}
	}
	d.Address = firstNonEmpty(d.Address, firstMatch(Address, sections...), Address(full))
	d.Phone = firstNonEmpty(firstMatch(Phone, sources[1]...), firstMatch(Phone, sections...), Phone(full))

	for _, s := range sources[2] {
		d.Emails = appendUnique(d.Emails, Emails(s)...)
	}
	d.Emails = appendUnique(d.Emails, mailtos...)
	for _, s := range sections {
		d.Emails = appendUnique(d.Emails, Emails(s)...)
	}
	d.Emails = appendUnique(d.Emails, Emails(full)...)
	if len(d.Emails) > 0 {
		d.Email = d.Emails[0]
	}
	return d
}

// Phone returns the first number in text with at least nine digits.
func Phone(text string) string {
	for _, m := range rePhone.FindAllString(text, -1) {
		if len(reDigit.FindAllString(m, -1)) >= minPhoneDigits {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// Address returns the first Spanish street address in text.
func Address(text string) string {
	m := reAddress.FindString(text)
	if m == "" {
		return ""
	}
	return trimAddress(m)
}

// AddressFromLabel reads an address out of a snippet that starts with an
// address label. Street names without a known street type are accepted
// here since the label already says what follows.
func AddressFromLabel(snippet string) string {
	if a := Address(snippet); a != "" {
		return a
	}
	rest := reLabelPrefix.ReplaceAllString(snippet, "")
	if rest == snippet {
		return ""
	}
	rest = trimAddress(rest)
	if utf8.RuneCountInString(rest) < minSnippetLength {
		return ""
	}
	return rest
}

func trimAddress(s string) string {
	s = reAddressEnd.ReplaceAllString(s, "")
	return strings.Trim(s, " .,;:-")
}

// labelledSnippets returns the text of every element owning a text node that
// matches label, limited to snippet-sized texts.
func labelledSnippets(rawHTML string, label *regexp.Regexp) []string {
	doc, err := htmlquery.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var out []string
	for _, n := range htmlquery.Find(doc, "//text()") {
		parent := n.Parent
		if parent == nil || skippedElement(parent) || !label.MatchString(n.Data) {
			continue
		}
		text := strings.TrimSpace(reWhitespace.ReplaceAllString(htmlquery.InnerText(parent), " "))
		if l := utf8.RuneCountInString(text); l >= minSnippetLength && l <= maxSnippetLength {
			out = append(out, text)
		}
	}
	return out
}

func skippedElement(n *xhtml.Node) bool {
	return n.Type == xhtml.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript")
}

// sectionsAndMailtos collects the text of contact-ish blocks and the
// addresses behind mailto links.
func sectionsAndMailtos(rawHTML string) (sections, mailtos []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, nil
	}

	doc.Find("footer, address, section, div, p, span").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if goquery.NodeName(s) != "footer" && goquery.NodeName(s) != "address" &&
			!reContactSection.MatchString(class+" "+id) {
			return
		}
		inner, err := s.Html()
		if err != nil {
			return
		}
		if text := VisibleText(inner); text != "" {
			sections = append(sections, text)
		}
	})

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if clean := SanitizeEmail(href); clean != "" {
			mailtos = append(mailtos, clean)
		}
	})
	return sections, mailtos
}

func firstMatch(find func(string) string, texts ...string) string {
	for _, t := range texts {
		if v := find(t); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, have := range list {
			if have == v {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, v)
		}
	}
	return list
}
