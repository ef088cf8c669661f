package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	name    string
	results []SearchResult
	err     error
	got     int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	f.got = numResults
	return f.results, f.err
}

func fakeFactory(e *fakeEngine) Factory {
	return func(Options) (SearchEngine, error) { return e, nil }
}

func TestDispatcherNames(t *testing.T) {
	d := NewDispatcher(Options{})
	assert.Equal(t, []string{"duckduckgo", "bing", "baidu", "google"}, d.Names())

	names := d.Names()
	names[0] = "changed"
	assert.Equal(t, "duckduckgo", d.Names()[0])
}

func TestDispatcherUnknownEngine(t *testing.T) {
	d := NewDispatcher(Options{})

	_, err := d.Search(context.Background(), "yahoo", "golang", 5)
	require.ErrorIs(t, err, ErrUnknownEngine)
	for _, name := range []string{"yahoo", "duckduckgo", "bing", "baidu", "google"} {
		assert.Contains(t, err.Error(), name)
	}
	assert.True(t, IsConfigurationError(err))
}

func TestDispatcherEngineIsCaseInsensitive(t *testing.T) {
	d := NewDispatcher(Options{})

	eng, err := d.Engine("  BING ")
	require.NoError(t, err)
	assert.Equal(t, "bing", eng.Name())

	eng, err = d.Engine("DuckDuckGo")
	require.NoError(t, err)
	assert.Equal(t, "duckduckgo", eng.Name())
}

func TestDispatcherGoogleCredentials(t *testing.T) {
	_, err := NewDispatcher(Options{}).Engine("google")
	require.ErrorIs(t, err, ErrMissingCredentials)

	eng, err := NewDispatcher(Options{Google: GoogleConfig{APIKey: "k", CX: "cx"}}).Engine("google")
	require.NoError(t, err)
	assert.Equal(t, "google", eng.Name())
}

func TestDispatcherSearch(t *testing.T) {
	fake := &fakeEngine{name: "bing", results: []SearchResult{{Title: "Go", URL: "https://go.dev/"}}}
	d := NewDispatcher(Options{})
	d.Register("Bing", fakeFactory(fake))

	resp, err := d.Search(context.Background(), "bing", "golang", 7)
	require.NoError(t, err)
	assert.Equal(t, &Response{
		Query:   "golang",
		Engine:  "bing",
		Count:   1,
		Results: fake.results,
	}, resp)
	assert.Equal(t, 7, fake.got)
	assert.Len(t, d.Names(), 4)
}

func TestDispatcherSearchNilResults(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Register("bing", fakeFactory(&fakeEngine{name: "bing"}))

	resp, err := d.Search(context.Background(), "bing", "golang", 5)
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Zero(t, resp.Count)
}

func TestDispatcherSearchErrors(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Register("duckduckgo", fakeFactory(&fakeEngine{name: "duckduckgo", err: ErrFeatureUnavailable}))

	_, err := d.Search(context.Background(), "bing", "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = d.Search(context.Background(), "duckduckgo", "golang", 5)
	require.ErrorIs(t, err, ErrFeatureUnavailable)
	assert.Contains(t, err.Error(), "duckduckgo search")
}
