package ucassist

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ucassist-scraper/config"
	"ucassist-scraper/models"
)

var spaceRun = regexp.MustCompile(`\s+`)

// normalizeSpace collapses whitespace runs to single spaces and trims. The
// directory pads blank cells with &nbsp;, which counts as whitespace here.
func normalizeSpace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Extractor turns a rendered detail page into a ServiceRecord. The page
// lays fields out as label cells paired positionally with data cells, so
// extraction is a zip of the two selections in document order.
type Extractor struct {
	labelSel  string
	valueSel  string
	required  []string
	multiline map[string]bool
}

func NewExtractor(cfg *config.Config) *Extractor {
	multi := make(map[string]bool, len(cfg.MultilineFields))
	for _, name := range cfg.MultilineFields {
		multi[name] = true
	}
	required := make([]string, len(cfg.RequiredFields))
	copy(required, cfg.RequiredFields)

	return &Extractor{
		labelSel:  cfg.LabelSelector,
		valueSel:  cfg.ValueSelector,
		required:  required,
		multiline: multi,
	}
}

// Extract builds the record for pageURL from snap. pageURL must already be
// canonical; the record key is derived from it, never from the session URL,
// which carries per-session query parameters. A page that renders without
// every required field returns an ExtractionError.
func (e *Extractor) Extract(snap *models.Snapshot, pageURL string) (models.ServiceRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return models.ServiceRecord{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	base, _ := url.Parse(snap.URL)
	if base == nil || base.Host == "" {
		base, _ = url.Parse(pageURL)
	}

	labels := doc.Find(e.labelSel)
	values := doc.Find(e.valueSel)

	n := labels.Length()
	if values.Length() < n {
		n = values.Length()
	}

	fields := make(map[string]string)
	for i := 0; i < n; i++ {
		label := normalizeSpace(labels.Eq(i).Text())
		if label == "" {
			continue
		}
		if _, dup := fields[label]; dup {
			continue
		}
		if value := e.cellValue(values.Eq(i), label, base); value != "" {
			fields[label] = value
		}
	}

	var missing []string
	for _, name := range e.required {
		if fields[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return models.ServiceRecord{}, &ExtractionError{URL: pageURL, Missing: missing}
	}

	return models.ServiceRecord{Key: KeyForURL(pageURL), URL: pageURL, Fields: fields}, nil
}

// cellValue reads one data cell. A cell holding an image yields the image
// source resolved to an absolute URL; multiline fields yield their lines
// joined with "; "; everything else is the collapsed cell text.
func (e *Extractor) cellValue(cell *goquery.Selection, label string, base *url.URL) string {
	if img := cell.Find("img").First(); img.Length() > 0 {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || base == nil {
			return src
		}
		ref, err := url.Parse(src)
		if err != nil {
			return src
		}
		return base.ResolveReference(ref).String()
	}

	if e.multiline[label] {
		var parts []string
		for _, line := range cellLines(cell) {
			if line = normalizeSpace(line); line != "" {
				parts = append(parts, line)
			}
		}
		return strings.Join(parts, "; ")
	}

	return normalizeSpace(cell.Text())
}

// cellLines flattens a cell into text lines, treating <br> as a line break
// alongside literal newlines.
func cellLines(cell *goquery.Selection) []string {
	var b strings.Builder
	cell.Contents().Each(func(_ int, n *goquery.Selection) {
		if goquery.NodeName(n) == "br" {
			b.WriteString("\n")
			return
		}
		b.WriteString(n.Text())
	})
	return strings.Split(b.String(), "\n")
}
