package ucassist

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucassist-scraper/models"
)

// fakeSession plays back canned listing pages: Fetch serves the search entry
// page, the first successful Click is the search trigger, and every later
// successful Click is the next-page control. A failed click consumes no
// listing page, matching a session whose page did not move.
type fakeSession struct {
	listingPages []string
	fetchCalls   int
	clickCalls   int
	served       int
	failClicks   map[int]error // 1-based click index -> injected failure
}

func (f *fakeSession) Fetch(ctx context.Context, pageURL, waitFor string) (*models.Snapshot, error) {
	f.fetchCalls++
	return &models.Snapshot{URL: pageURL, HTML: `<html><body><input name="searchID"></body></html>`}, nil
}

func (f *fakeSession) Click(ctx context.Context, sel, waitFor string) (*models.Snapshot, error) {
	f.clickCalls++
	if err := f.failClicks[f.clickCalls]; err != nil {
		return nil, err
	}
	if f.served >= len(f.listingPages) {
		return nil, fmt.Errorf("%w: no page %d", ErrNavigationFailed, f.served+1)
	}
	f.served++
	return &models.Snapshot{
		URL:  fmt.Sprintf("https://ucassist.org/results?appSession=111&page=%d", f.served),
		HTML: f.listingPages[f.served-1],
	}, nil
}

func listingFixture(hasNext bool, hrefs ...string) string {
	page := `<html><body><table data-cb-name="cbTable"><tbody>`
	for _, href := range hrefs {
		page += `<tr><td class="cbResultSetData">Entry</td><td class="cbResultSetData"><a href="` + href + `">View Details</a></td></tr>`
	}
	page += `</tbody></table>`
	if hasNext {
		page += `<a data-cb-name="JumpToNext" href="javascript:void(0)">Next</a>`
	}
	page += `</body></html>`
	return page
}

func TestWalkerPagesThroughResults(t *testing.T) {
	session := &fakeSession{listingPages: []string{
		listingFixture(true, "details?RecordID=1&appSession=111", "details?RecordID=2"),
		listingFixture(true, "details?RecordID=3"),
		listingFixture(false, "details?RecordID=4"),
	}}

	w := NewWalker(session, testConfig())
	ctx := context.Background()

	var pages []models.ListingPage
	for w.Next(ctx) {
		pages = append(pages, w.Page())
	}

	require.NoError(t, w.Err())
	require.Len(t, pages, 3)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, []string{
		"https://ucassist.org/details?RecordID=1",
		"https://ucassist.org/details?RecordID=2",
	}, pages[0].URLs)
	assert.Equal(t, []string{"https://ucassist.org/details?RecordID=3"}, pages[1].URLs)
	assert.Equal(t, []string{"https://ucassist.org/details?RecordID=4"}, pages[2].URLs)

	// opening the search is one fetch plus one click, then one click per
	// extra page
	assert.Equal(t, 1, session.fetchCalls)
	assert.Equal(t, 3, session.clickCalls)
}

func TestWalkerStopsAtMaxPages(t *testing.T) {
	session := &fakeSession{listingPages: []string{
		listingFixture(true, "details?RecordID=1"),
		listingFixture(true, "details?RecordID=2"),
		listingFixture(true, "details?RecordID=3"),
	}}

	cfg := testConfig()
	cfg.MaxPages = 2
	w := NewWalker(session, cfg)

	count := 0
	for w.Next(context.Background()) {
		count++
	}

	require.NoError(t, w.Err())
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, session.clickCalls)
}

func TestWalkerDropsRepeatedURLs(t *testing.T) {
	session := &fakeSession{listingPages: []string{
		listingFixture(true, "details?RecordID=1", "details?RecordID=1&appSession=999"),
		listingFixture(false, "details?RecordID=1", "details?RecordID=2"),
	}}

	w := NewWalker(session, testConfig())

	var pages []models.ListingPage
	for w.Next(context.Background()) {
		pages = append(pages, w.Page())
	}

	require.NoError(t, w.Err())
	require.Len(t, pages, 2)
	assert.Equal(t, []string{"https://ucassist.org/details?RecordID=1"}, pages[0].URLs)
	assert.Equal(t, []string{"https://ucassist.org/details?RecordID=2"}, pages[1].URLs)
}

func TestWalkerSkipsUnusableAnchors(t *testing.T) {
	page := `<html><body><table data-cb-name="cbTable"><tbody>
	<tr><td><a href="details?RecordID=1">View Details</a></td></tr>
	<tr><td><a>View Details</a></td></tr>
	<tr><td><a href="#top">View Details</a></td></tr>
	<tr><td><a href="javascript:openDetails(2)">View Details</a></td></tr>
	<tr><td><a href="details?RecordID=9">Something Else</a></td></tr>
	</tbody></table></body></html>`

	session := &fakeSession{listingPages: []string{page}}
	w := NewWalker(session, testConfig())
	ctx := context.Background()

	require.True(t, w.Next(ctx))
	assert.Equal(t, []string{"https://ucassist.org/details?RecordID=1"}, w.Page().URLs)
	require.False(t, w.Next(ctx))
	require.NoError(t, w.Err())
}

func TestWalkerRetriesTransientAdvanceFailure(t *testing.T) {
	session := &fakeSession{
		listingPages: []string{
			listingFixture(true, "details?RecordID=1"),
			listingFixture(false, "details?RecordID=2"),
		},
		failClicks: map[int]error{
			2: fmt.Errorf("%w: %s after 45s", ErrFetchTimeout, `[data-cb-name="JumpToNext"]`),
		},
	}

	w := NewWalker(session, testConfig())

	var pages []models.ListingPage
	for w.Next(context.Background()) {
		pages = append(pages, w.Page())
	}

	require.NoError(t, w.Err())
	require.Len(t, pages, 2)
	assert.Equal(t, []string{"https://ucassist.org/details?RecordID=2"}, pages[1].URLs)
	// search click, failed advance, successful advance
	assert.Equal(t, 3, session.clickCalls)
}

func TestWalkerRetriesSearchOpen(t *testing.T) {
	session := &fakeSession{
		listingPages: []string{listingFixture(false, "details?RecordID=1")},
		failClicks: map[int]error{
			1: fmt.Errorf("%w: search trigger: net::ERR_CONNECTION_RESET", ErrNavigationFailed),
		},
	}

	w := NewWalker(session, testConfig())
	ctx := context.Background()

	require.True(t, w.Next(ctx))
	assert.Equal(t, []string{"https://ucassist.org/details?RecordID=1"}, w.Page().URLs)
	require.False(t, w.Next(ctx))
	require.NoError(t, w.Err())

	// the entry page is reloaded before the search is clicked again
	assert.Equal(t, 2, session.fetchCalls)
	assert.Equal(t, 2, session.clickCalls)
}

func TestWalkerReportsFailure(t *testing.T) {
	stuck := fmt.Errorf("%w: %s after 45s", ErrFetchTimeout, `[data-cb-name="JumpToNext"]`)
	session := &fakeSession{
		listingPages: []string{listingFixture(true, "details?RecordID=1")},
		failClicks:   map[int]error{2: stuck, 3: stuck, 4: stuck},
	}

	cfg := testConfig()
	w := NewWalker(session, cfg)
	ctx := context.Background()

	require.True(t, w.Next(ctx))
	require.False(t, w.Next(ctx))

	err := w.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchTimeout)
	assert.False(t, w.Next(ctx), "walker must stay stopped after a failure")

	// search click plus the full retry budget for the advance
	assert.Equal(t, 1+cfg.MaxRetries, session.clickCalls)
}

func TestWalkerFailsOnFirstPage(t *testing.T) {
	unready := fmt.Errorf("%w: %s after 45s", ErrFetchTimeout, `[data-cb-name="cbTable"]`)
	session := &fakeSession{
		listingPages: []string{listingFixture(false, "details?RecordID=1")},
		failClicks:   map[int]error{1: unready, 2: unready, 3: unready},
	}

	w := NewWalker(session, testConfig())
	require.False(t, w.Next(context.Background()))
	require.ErrorIs(t, w.Err(), ErrFetchTimeout)
	assert.Equal(t, 3, session.fetchCalls, "every attempt reopens the entry page")
}

func TestWalkerReset(t *testing.T) {
	session := &fakeSession{listingPages: []string{
		listingFixture(false, "details?RecordID=1"),
	}}

	w := NewWalker(session, testConfig())
	ctx := context.Background()

	require.True(t, w.Next(ctx))
	first := w.Page()
	require.False(t, w.Next(ctx))

	w.Reset()
	session.clickCalls = 0
	session.served = 0

	require.True(t, w.Next(ctx))
	assert.Equal(t, first, w.Page())
	require.NoError(t, w.Err())
}
