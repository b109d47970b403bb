package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/hashwatch/internal/httpclient"
	"github.com/aleister1102/hashwatch/internal/models"
	"github.com/aleister1102/hashwatch/internal/notifier"
)

type fetchResponse struct {
	body  string
	err   *httpclient.FetchError
	delay time.Duration
	block bool // Wait for ctx to end, then fail with a timeout
}

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]fetchResponse
	calls     map[string]int

	inFlight    int32
	maxInFlight int32
}

func newFakeFetcher(responses map[string]fetchResponse) *fakeFetcher {
	return &fakeFetcher{responses: responses, calls: make(map[string]int)}
}

func (f *fakeFetcher) FetchContent(ctx context.Context, url string) (*httpclient.FetchContentResult, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		observed := atomic.LoadInt32(&f.maxInFlight)
		if current <= observed || atomic.CompareAndSwapInt32(&f.maxInFlight, observed, current) {
			break
		}
	}

	f.mu.Lock()
	f.calls[url]++
	resp, ok := f.responses[url]
	f.mu.Unlock()

	if !ok {
		return nil, &httpclient.FetchError{Kind: httpclient.KindConnectionFailed, URL: url, Attempts: 1, Err: errors.New("no route")}
	}
	if resp.block {
		<-ctx.Done()
		return nil, &httpclient.FetchError{Kind: httpclient.KindTimeout, URL: url, Attempts: 1, Err: ctx.Err()}
	}
	if resp.delay > 0 {
		time.Sleep(resp.delay)
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &httpclient.FetchContentResult{
		Content:        []byte(resp.body),
		ContentType:    "application/javascript",
		HTTPStatusCode: 200,
		Attempts:       1,
	}, nil
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

type fakeLedger struct {
	mu      sync.Mutex
	records map[string]models.HashRecord
	puts    []models.HashRecord
	loadErr error
	putErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]models.HashRecord)}
}

func (l *fakeLedger) Load(context.Context) (map[string]models.HashRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	out := make(map[string]models.HashRecord, len(l.records))
	for k, v := range l.records {
		out[k] = v
	}
	return out, nil
}

func (l *fakeLedger) Put(_ context.Context, record models.HashRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.putErr != nil {
		return l.putErr
	}
	l.puts = append(l.puts, record)
	l.records[record.Key] = record
	return nil
}

func (l *fakeLedger) putCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.puts)
}

type fakePayloads struct {
	mu   sync.Mutex
	puts []models.PayloadRecord
	err  error
}

func (p *fakePayloads) Put(_ context.Context, record models.PayloadRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.puts = append(p.puts, record)
	return nil
}

func (p *fakePayloads) putCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.puts)
}

// countingSender stands in for the e-mail channel.
type countingSender struct {
	mu    sync.Mutex
	kinds []string
}

func (s *countingSender) Name() string { return "email" }

func (s *countingSender) Send(_ context.Context, msg notifier.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = append(s.kinds, msg.Kind)
	return nil
}

func (s *countingSender) count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, k := range s.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

type fakeHistory struct {
	reports []*models.RunReport
	err     error
}

func (h *fakeHistory) StoreRun(_ context.Context, report *models.RunReport) (string, error) {
	h.reports = append(h.reports, report)
	return "history/" + report.RunID + ".parquet", h.err
}

type fakeMetrics struct {
	mu      sync.Mutex
	results int
	runs    int
}

func (m *fakeMetrics) ObserveResult(models.CheckResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results++
}

func (m *fakeMetrics) ObserveRun(*models.RunReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
}
