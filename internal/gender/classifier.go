package gender

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/matsen/byline/internal/genderapi"
	"github.com/matsen/byline/internal/llm"
)

const (
	// ServiceThreshold is the minimum confidence at which an external
	// service answer is accepted instead of falling through to the LLM tier.
	ServiceThreshold = 0.7

	// DefaultBatchSize is the number of names per LLM batch.
	DefaultBatchSize = 100

	// DefaultConcurrency bounds parallel service lookups.
	DefaultConcurrency = 4
)

// Service is the probabilistic lookup consumed by the middle tier,
// satisfied by *genderapi.Client.
type Service interface {
	Lookup(ctx context.Context, name string) (*genderapi.Prediction, error)
}

// Classifier resolves names through cache, dictionary, service, and LLM
// tiers in order. Tiers without a backend are skipped.
type Classifier struct {
	cache       *Cache
	dict        *Dictionary
	service     Service
	provider    llm.Provider
	batchSize   int
	concurrency int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithService enables the external probabilistic tier.
func WithService(s Service) Option {
	return func(c *Classifier) {
		c.service = s
	}
}

// WithProvider enables the batch LLM tier.
func WithProvider(p llm.Provider) Option {
	return func(c *Classifier) {
		c.provider = p
	}
}

// WithBatchSize overrides the LLM batch size.
func WithBatchSize(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithConcurrency overrides the service lookup fan-out.
func WithConcurrency(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a classifier over the given cache.
func New(cache *Cache, opts ...Option) *Classifier {
	c := &Classifier{
		cache:       cache,
		dict:        NewDictionary(),
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats counts per-tier outcomes of one classification pass.
type Stats struct {
	CacheHits     int `json:"cache_hits"`
	TooShort      int `json:"too_short"`
	Dictionary    int `json:"dictionary"`
	Service       int `json:"genderize"`
	ServiceErrors int `json:"genderize_errors,omitempty"`
	LLM           int `json:"llm"`
	Unresolved    int `json:"unresolved"`
}

// ClassifyAll resolves every name through the tier chain and returns one
// result per distinct input name. Every outcome, unknowns included, is
// cached, so a repeat run does no external work. The cache is flushed after
// the service tier and after each LLM batch so an interrupted run keeps its
// progress.
func (c *Classifier) ClassifyAll(ctx context.Context, names []string) (map[string]Result, Stats, error) {
	results := make(map[string]Result, len(names))
	var stats Stats

	var pending []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		if r, ok := c.cache.Get(name); ok {
			results[name] = r
			stats.CacheHits++
			continue
		}
		if utf8.RuneCountInString(name) <= 1 {
			r := Result{Gender: Unknown, Source: SourceTooShort}
			c.cache.Put(name, r)
			results[name] = r
			stats.TooShort++
			continue
		}
		if r, ok := c.dict.Lookup(name); ok {
			c.cache.Put(name, r)
			results[name] = r
			stats.Dictionary++
			continue
		}
		pending = append(pending, name)
	}

	if c.service != nil && len(pending) > 0 {
		resolved, errCount := c.lookupAll(ctx, pending)
		stats.ServiceErrors = errCount

		var leftover []string
		for _, name := range pending {
			if r, ok := resolved[name]; ok {
				c.cache.Put(name, r)
				results[name] = r
				stats.Service++
				continue
			}
			leftover = append(leftover, name)
		}
		pending = leftover

		if err := c.cache.Flush(); err != nil {
			return results, stats, err
		}
	}

	if err := c.llmPass(ctx, pending, results, &stats); err != nil {
		return results, stats, err
	}

	if err := c.cache.Flush(); err != nil {
		return results, stats, err
	}
	return results, stats, nil
}

// RetryUnresolved re-submits names whose previous outcome could not be
// parsed, replacing their cached entries. The dictionary and service tiers
// already passed on these names and are not consulted again.
func (c *Classifier) RetryUnresolved(ctx context.Context, names []string) (map[string]Result, Stats, error) {
	results := make(map[string]Result, len(names))
	var stats Stats

	var pending []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			pending = append(pending, name)
		}
	}

	if err := c.llmPass(ctx, pending, results, &stats); err != nil {
		return results, stats, err
	}
	if err := c.cache.Flush(); err != nil {
		return results, stats, err
	}
	return results, stats, nil
}

// lookupAll queries the service for each name with bounded concurrency.
// Failed or low-confidence lookups are dropped so the name falls through to
// the next tier.
func (c *Classifier) lookupAll(ctx context.Context, names []string) (map[string]Result, int) {
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	resolved := make(map[string]Result, len(names))
	errCount := 0

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pred, err := c.service.Lookup(ctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errCount++
				return
			}
			if r, ok := acceptPrediction(pred); ok {
				resolved[name] = r
			}
		}(name)
	}
	wg.Wait()

	return resolved, errCount
}

// acceptPrediction converts a service answer to a Result when its confidence
// clears the threshold. The service reports confidence in its own label;
// the stored probability is always P(female).
func acceptPrediction(pred *genderapi.Prediction) (Result, bool) {
	if pred == nil || pred.Probability < ServiceThreshold {
		return Result{}, false
	}
	switch pred.Gender {
	case "female":
		return Result{Gender: Female, PFemale: ptr(pred.Probability), Source: SourceService}, true
	case "male":
		return Result{Gender: Male, PFemale: ptr(1 - pred.Probability), Source: SourceService}, true
	}
	return Result{}, false
}

// llmPass submits pending names to the provider in batches, caching each
// batch's outcomes as it lands.
func (c *Classifier) llmPass(ctx context.Context, pending []string, results map[string]Result, stats *Stats) error {
	for len(pending) > 0 {
		n := c.batchSize
		if n > len(pending) {
			n = len(pending)
		}
		batch := pending[:n]
		pending = pending[n:]

		for name, r := range c.classifyBatch(ctx, batch) {
			c.cache.Put(name, r)
			results[name] = r
			if r.Gender == Unknown {
				stats.Unresolved++
			} else {
				stats.LLM++
			}
		}
		if err := c.cache.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// classifyBatch sends one batch to the provider and maps every input name to
// an outcome. Provider failures and unparseable responses leave names
// recorded as unparsed so a retry pass can resubmit them.
func (c *Classifier) classifyBatch(ctx context.Context, batch []string) map[string]Result {
	results := make(map[string]Result, len(batch))

	fillUnparsed := func() {
		for _, name := range batch {
			if _, ok := results[name]; !ok {
				results[name] = Result{Gender: Unknown, Source: SourceLLMUnparsed}
			}
		}
	}

	if c.provider == nil || !c.provider.IsConfigured() {
		fillUnparsed()
		return results
	}

	resp, err := c.provider.Generate(ctx, buildPrompt(batch))
	if err != nil {
		fillUnparsed()
		return results
	}

	mapping := ParseMapping(resp)
	for _, name := range batch {
		label, ok := mapping[name]
		if !ok {
			continue
		}
		switch label {
		case "female":
			results[name] = Result{Gender: Female, PFemale: ptr(1.0), Source: SourceLLM}
		case "male":
			results[name] = Result{Gender: Male, PFemale: ptr(0.0), Source: SourceLLM}
		case "unknown":
			results[name] = Result{Gender: Unknown, Source: SourceLLM}
		}
	}
	fillUnparsed()

	return results
}

// buildPrompt formats one batch classification request. The model must echo
// each name back exactly as written.
func buildPrompt(names []string) string {
	var b strings.Builder
	b.WriteString("Classify the gender of each of the following given names.\n\nNames:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString(`
Respond with ONLY a JSON object mapping each name exactly as written above to "male", "female", or "unknown".

Example response:
{"maria": "female", "wei": "unknown", "john": "male"}

No explanations, no markdown, just the JSON object.`)
	return b.String()
}
