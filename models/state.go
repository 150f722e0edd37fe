package models

import "time"

// CrawlState tracks what a single crawl has visited and produced. Records
// keeps accumulation order; the first record seen for a key wins and later
// duplicates are dropped.
type CrawlState struct {
	Records []ServiceRecord
	Skips   []SkipRecord

	visited map[string]bool
	byKey   map[string]bool
}

func NewCrawlState() *CrawlState {
	return &CrawlState{
		visited: make(map[string]bool),
		byKey:   make(map[string]bool),
	}
}

// Visit marks a detail URL as taken. It returns false when the URL was
// already visited in this crawl.
func (s *CrawlState) Visit(url string) bool {
	if s.visited[url] {
		return false
	}
	s.visited[url] = true
	return true
}

// Accumulate appends rec unless a record with the same key is already held.
func (s *CrawlState) Accumulate(rec ServiceRecord) bool {
	if s.byKey[rec.Key] {
		return false
	}
	s.byKey[rec.Key] = true
	s.Records = append(s.Records, rec)
	return true
}

// Skip records a page that was abandoned and why.
func (s *CrawlState) Skip(url, reason string, attempts int) {
	s.Skips = append(s.Skips, SkipRecord{URL: url, Reason: reason, Attempts: attempts})
}

// Summary is the end-of-run accounting printed to the operator.
type Summary struct {
	PagesWalked int
	Extracted   int
	Skipped     int
	Skips       []SkipRecord
	WalkError   string
	Elapsed     time.Duration
}
