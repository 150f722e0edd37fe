package services

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"ucassist-scraper/models"
)

// Report summarizes the extracted dataset: how services spread over
// counties, which keywords recur, and how completely each field is filled.
type Report struct {
	TotalRecords    int
	RecordsByCounty map[string]int
	TopKeywords     []KeywordCount
	FieldCoverage   map[string]int
	MultiCounty     int
}

type KeywordCount struct {
	Keyword string
	Count   int
}

// CleanRecords drops records that lost their identity, carry no data, or
// miss one of the required fields, and dedups by key, keeping the first
// occurrence.
func CleanRecords(records []models.ServiceRecord, required ...string) []models.ServiceRecord {
	seen := make(map[string]bool)
	cleaned := make([]models.ServiceRecord, 0, len(records))

	for _, r := range records {
		r.Key = strings.TrimSpace(r.Key)
		r.URL = strings.TrimSpace(r.URL)

		if r.Key == "" || r.URL == "" || len(r.Fields) == 0 {
			continue
		}
		if missingAny(r.Fields, required) {
			continue
		}
		if seen[r.Key] {
			continue
		}
		seen[r.Key] = true
		cleaned = append(cleaned, r)
	}

	return cleaned
}

func missingAny(fields map[string]string, required []string) bool {
	for _, name := range required {
		if strings.TrimSpace(fields[name]) == "" {
			return true
		}
	}
	return false
}

func GenerateReport(records []models.ServiceRecord) Report {
	report := Report{
		TotalRecords:    len(records),
		RecordsByCounty: make(map[string]int),
		FieldCoverage:   make(map[string]int),
	}

	keywords := make(map[string]int)
	for _, r := range records {
		for name := range r.Fields {
			report.FieldCoverage[name]++
		}

		counties := splitMulti(r.Fields[models.FieldCounties])
		if len(counties) > 1 {
			report.MultiCounty++
		}
		for _, county := range counties {
			report.RecordsByCounty[county]++
		}

		for _, kw := range splitMulti(r.Fields[models.FieldKeywords]) {
			keywords[strings.ToLower(kw)]++
		}
	}

	report.TopKeywords = topKeywords(keywords, 10)
	return report
}

func PrintReport(report Report) {
	overview := table.NewWriter()
	overview.SetOutputMirror(os.Stdout)
	overview.SetStyle(table.StyleLight)
	overview.SetTitle("Service Directory Insights")
	overview.AppendRows([]table.Row{
		{"Records", report.TotalRecords},
		{"Counties covered", len(report.RecordsByCounty)},
		{"Multi-county services", report.MultiCounty},
	})
	overview.Render()

	if len(report.RecordsByCounty) > 0 {
		counties := table.NewWriter()
		counties.SetOutputMirror(os.Stdout)
		counties.SetStyle(table.StyleLight)
		counties.AppendHeader(table.Row{"County", "Services"})
		for _, county := range sortedKeys(report.RecordsByCounty) {
			counties.AppendRow(table.Row{county, report.RecordsByCounty[county]})
		}
		counties.Render()
	}

	if len(report.TopKeywords) > 0 {
		kws := table.NewWriter()
		kws.SetOutputMirror(os.Stdout)
		kws.SetStyle(table.StyleLight)
		kws.AppendHeader(table.Row{"#", "Keyword", "Services"})
		for i, kc := range report.TopKeywords {
			kws.AppendRow(table.Row{i + 1, kc.Keyword, kc.Count})
		}
		kws.Render()
	}
}

// PrintSummary renders the end-of-run accounting, including every skipped
// page with its reason.
func PrintSummary(sum *models.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Crawl Summary")
	t.AppendRows([]table.Row{
		{"Listing pages walked", sum.PagesWalked},
		{"Records extracted", sum.Extracted},
		{"Pages skipped", sum.Skipped},
		{"Elapsed", sum.Elapsed.Round(time.Second)},
	})
	if sum.WalkError != "" {
		t.AppendRow(table.Row{"Walk ended early", sum.WalkError})
	}
	t.Render()

	if len(sum.Skips) > 0 {
		skips := table.NewWriter()
		skips.SetOutputMirror(os.Stdout)
		skips.SetStyle(table.StyleLight)
		skips.AppendHeader(table.Row{"Skipped URL", "Attempts", "Reason"})
		for _, s := range sum.Skips {
			skips.AppendRow(table.Row{s.URL, s.Attempts, s.Reason})
		}
		skips.Render()
	}
}

// splitMulti splits a "; "-joined multi-value field.
func splitMulti(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func topKeywords(counts map[string]int, n int) []KeywordCount {
	out := make([]KeywordCount, 0, len(counts))
	for kw, c := range counts {
		out = append(out, KeywordCount{Keyword: kw, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Keyword < out[j].Keyword
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
