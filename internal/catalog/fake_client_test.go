package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"mediabrowse/catalogservice/internal/providers/tmdb"
)

type recordedCall struct {
	endpoint string
	params   url.Values
}

// fakeClient answers from fixed tables and records every list request.
type fakeClient struct {
	mu    sync.Mutex
	calls []recordedCall

	pages     map[string]tmdb.Page
	pageErrs  map[string]error
	videos    map[string][]tmdb.Video
	videoErrs map[string]error
	genres    map[string][]tmdb.Genre
	providers []tmdb.WatchProvider
	regions   []string

	videoCalls    atomic.Int32
	inFlight      atomic.Int32
	maxInFlight   atomic.Int32
	videoGate     chan struct{}
	panicOnVideos bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages:     map[string]tmdb.Page{},
		pageErrs:  map[string]error{},
		videos:    map[string][]tmdb.Video{},
		videoErrs: map[string]error{},
		genres:    map[string][]tmdb.Genre{},
	}
}

func (c *fakeClient) list(endpoint string, params url.Values) (tmdb.Page, error) {
	c.mu.Lock()
	c.calls = append(c.calls, recordedCall{endpoint: endpoint, params: params})
	c.mu.Unlock()
	if err := c.pageErrs[endpoint]; err != nil {
		return tmdb.Page{}, err
	}
	return c.pages[endpoint], nil
}

func (c *fakeClient) Discover(ctx context.Context, mediaType string, params url.Values) (tmdb.Page, error) {
	return c.list("discover/"+mediaType, params)
}

func (c *fakeClient) Search(ctx context.Context, mediaType string, params url.Values) (tmdb.Page, error) {
	return c.list("search/"+mediaType, params)
}

func (c *fakeClient) Videos(ctx context.Context, mediaType string, id int) ([]tmdb.Video, error) {
	c.videoCalls.Add(1)
	current := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		seen := c.maxInFlight.Load()
		if current <= seen || c.maxInFlight.CompareAndSwap(seen, current) {
			break
		}
	}
	if c.videoGate != nil {
		<-c.videoGate
	}
	if c.panicOnVideos {
		panic("videos exploded")
	}
	key := fmt.Sprintf("%s-%d", mediaType, id)
	if err := c.videoErrs[key]; err != nil {
		return nil, err
	}
	return c.videos[key], nil
}

func (c *fakeClient) Genres(ctx context.Context, mediaType string) ([]tmdb.Genre, error) {
	if err := c.pageErrs["genres/"+mediaType]; err != nil {
		return nil, err
	}
	return c.genres[mediaType], nil
}

func (c *fakeClient) WatchProviders(ctx context.Context, mediaType, region string) ([]tmdb.WatchProvider, error) {
	c.mu.Lock()
	c.regions = append(c.regions, region)
	c.mu.Unlock()
	if err := c.pageErrs["providers"]; err != nil {
		return nil, err
	}
	return c.providers, nil
}

func (c *fakeClient) callsTo(endpoint string) []recordedCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []recordedCall
	for _, call := range c.calls {
		if call.endpoint == endpoint {
			out = append(out, call)
		}
	}
	return out
}

func movieResults(n int, firstID int) []tmdb.Result {
	out := make([]tmdb.Result, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, tmdb.Result{ID: firstID + i, Title: fmt.Sprintf("Movie %d", firstID+i), ReleaseDate: "2024-06-10"})
	}
	return out
}

func tvResults(n int, firstID int) []tmdb.Result {
	out := make([]tmdb.Result, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, tmdb.Result{ID: firstID + i, Name: fmt.Sprintf("Show %d", firstID+i), FirstAirDate: "2024-06-05"})
	}
	return out
}
