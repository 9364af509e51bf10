package navigator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callsearch/internal/model"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	results []model.SearchResult
}

func (f *fakeSearcher) Search(q string, flt model.Filter) []model.SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q+"|"+string(flt))
	return append([]model.SearchResult(nil), f.results...)
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recScroller struct {
	mu  sync.Mutex
	idx []int
}

func (r *recScroller) ScrollIntoView(i int) {
	r.mu.Lock()
	r.idx = append(r.idx, i)
	r.mu.Unlock()
}

func (r *recScroller) Indices() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.idx...)
}

type clickRecord struct {
	ts     string
	result *model.SearchResult
}

func threeResults() []model.SearchResult {
	return []model.SearchResult{
		{Type: model.TypeTranscript, Timestamp: "00:00:05.000", Text: "gas one"},
		{Type: model.TypeChat, Timestamp: "00:01:00", Text: "gas two"},
		{Type: model.TypeAgenda, Timestamp: "00:02:00", Text: "gas three"},
	}
}

func newTestSession(t *testing.T) (*Session, *fakeSearcher, *recScroller, *[]clickRecord) {
	t.Helper()
	searcher := &fakeSearcher{results: threeResults()}
	scroller := &recScroller{}
	var (
		mu     sync.Mutex
		clicks []clickRecord
	)
	s := NewSession(searcher,
		WithDebounce(20*time.Millisecond),
		WithScroller(scroller),
		WithResultClick(func(ts string, r *model.SearchResult) {
			mu.Lock()
			clicks = append(clicks, clickRecord{ts, r})
			mu.Unlock()
		}),
	)
	return s, searcher, scroller, &clicks
}

// showResults runs a search synchronously through the filter path.
func showResults(s *Session) {
	s.OnQueryChange("gas")
	s.SetFilter(model.FilterAll)
}

func TestSession_WhenTypingQuickly_ShouldSearchOnceWithLastQuery(t *testing.T) {
	s, searcher, scroller, _ := newTestSession(t)

	s.OnQueryChange("g")
	s.OnQueryChange("ga")
	s.OnQueryChange("gas")
	assert.Equal(t, StateQuerying, s.State())

	require.Eventually(t, func() bool { return s.State() == StateResultsShown }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{"gas|all"}, searcher.Calls())
	assert.Len(t, s.Results(), 3)
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, []int{0}, scroller.Indices())
}

func TestSession_ArrowKeys_ShouldMoveAndClampSelection(t *testing.T) {
	s, _, scroller, _ := newTestSession(t)
	showResults(s)

	for i := 0; i < 5; i++ {
		s.OnKeyDown(KeyArrowDown)
	}
	assert.Equal(t, 2, s.Selected())

	for i := 0; i < 5; i++ {
		s.OnKeyDown(KeyArrowUp)
	}
	assert.Equal(t, 0, s.Selected())

	// Reset scroll, two moves down, two moves up; clamped presses do not scroll.
	assert.Equal(t, []int{0, 1, 2, 1, 0}, scroller.Indices())
}

func TestSession_WhenNewResultsArrive_ShouldResetSelection(t *testing.T) {
	s, _, scroller, _ := newTestSession(t)
	showResults(s)
	s.OnKeyDown(KeyArrowDown)
	s.OnKeyDown(KeyArrowDown)

	s.SetFilter(model.FilterChat)

	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, []int{0, 1, 2, 0}, scroller.Indices())
}

func TestSession_Enter_ShouldInvokeCallbackAndClose(t *testing.T) {
	s, _, _, clicks := newTestSession(t)
	showResults(s)
	s.OnKeyDown(KeyArrowDown)

	handled := s.OnKeyDown(KeyEnter)

	assert.True(t, handled)
	require.Len(t, *clicks, 1)
	assert.Equal(t, "00:01:00", (*clicks)[0].ts)
	assert.Equal(t, "gas two", (*clicks)[0].result.Text)
	assert.Equal(t, StateClosed, s.State())
	assert.Empty(t, s.Query())
	assert.Empty(t, s.Results())
	assert.Equal(t, 0, s.Selected())
}

func TestSession_Escape_ShouldCloseWithoutCallback(t *testing.T) {
	s, _, _, clicks := newTestSession(t)
	showResults(s)
	s.OnKeyDown(KeyArrowDown)

	s.OnKeyDown(KeyEscape)

	assert.Empty(t, *clicks)
	assert.Equal(t, StateClosed, s.State())
	assert.Empty(t, s.Query())
	assert.Equal(t, 0, s.Selected())
}

func TestSession_Click_ShouldSelectAndActivate(t *testing.T) {
	s, _, scroller, clicks := newTestSession(t)
	showResults(s)

	assert.True(t, s.Click(2))

	require.Len(t, *clicks, 1)
	assert.Equal(t, "gas three", (*clicks)[0].result.Text)
	assert.Equal(t, []int{0, 2}, scroller.Indices())
	assert.Equal(t, StateClosed, s.State())
}

func TestSession_Click_WhenOutOfRange_ShouldDoNothing(t *testing.T) {
	s, _, _, clicks := newTestSession(t)
	showResults(s)

	assert.False(t, s.Click(7))
	assert.False(t, s.Click(-1))
	assert.Empty(t, *clicks)
	assert.Equal(t, StateResultsShown, s.State())
}

func TestSession_Enter_WhenNoResults_ShouldBeIgnored(t *testing.T) {
	s, _, _, clicks := newTestSession(t)

	assert.False(t, s.OnKeyDown(KeyEnter))
	assert.Empty(t, *clicks)
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_WhenQueryCleared_ShouldDropResultsWithoutSearching(t *testing.T) {
	s, searcher, _, _ := newTestSession(t)
	showResults(s)
	before := len(searcher.Calls())

	s.OnQueryChange("")

	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Results())
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, searcher.Calls(), before)
}

func TestSession_WhenClosedBeforeDebounce_ShouldDiscardSearch(t *testing.T) {
	s, searcher, _, _ := newTestSession(t)

	s.OnQueryChange("gas")
	s.Close()
	time.Sleep(80 * time.Millisecond)

	assert.Empty(t, searcher.Calls())
	assert.Equal(t, StateClosed, s.State())
	assert.Empty(t, s.Results())
}

func TestSession_SetFilter_WhenQueryEmpty_ShouldNotSearch(t *testing.T) {
	s, searcher, _, _ := newTestSession(t)

	s.SetFilter(model.FilterAction)

	assert.Equal(t, model.FilterAction, s.Filter())
	assert.Empty(t, searcher.Calls())
}

func TestSession_Open_ShouldReviveClosedSession(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.Close()

	s.Open()

	assert.Equal(t, StateIdle, s.State())
	showResults(s)
	assert.Equal(t, StateResultsShown, s.State())
}

func TestSession_ShouldHaveUniqueIDs(t *testing.T) {
	a, _, _, _ := newTestSession(t)
	b, _, _, _ := newTestSession(t)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "results", StateResultsShown.String())
	assert.Equal(t, "closed", StateClosed.String())
}

func TestSession_Rerun_ShouldSearchAgainAndResetSelection(t *testing.T) {
	s, searcher, _, _ := newTestSession(t)
	showResults(s)
	s.OnKeyDown(KeyArrowDown)
	require.Equal(t, 1, s.Selected())

	searcher.mu.Lock()
	searcher.results = threeResults()[:2]
	searcher.mu.Unlock()

	assert.True(t, s.Rerun())
	assert.Len(t, s.Results(), 2)
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, []string{"gas|all", "gas|all"}, searcher.Calls())
}

func TestSession_Rerun_WhenIdleOrClosed_ShouldDoNothing(t *testing.T) {
	s, searcher, _, _ := newTestSession(t)

	assert.False(t, s.Rerun())
	showResults(s)
	s.Close()
	assert.False(t, s.Rerun())

	assert.Equal(t, []string{"gas|all"}, searcher.Calls())
}
