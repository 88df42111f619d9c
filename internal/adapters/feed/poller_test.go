package feed_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	feed "github.com/okian/spindle/internal/adapters/feed"
	model "github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeClient serves canned results or a canned error.
type fakeClient struct {
	mu      sync.Mutex
	result  model.FeedResult
	err     error
	fetches int
}

func (c *fakeClient) Fetch(_ context.Context) (model.FeedResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	if c.err != nil {
		return model.FeedResult{}, c.err
	}
	return c.result, nil
}

func (c *fakeClient) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// recordingSink captures everything the poller hands off.
type recordingSink struct {
	mu      sync.Mutex
	results []model.FeedResult
	errs    []error
}

func (s *recordingSink) HandleResult(_ context.Context, raw model.FeedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, raw)
}

func (s *recordingSink) HandleError(_ context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recordingSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results), len(s.errs)
}

func waitFor(check func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return check()
}

func TestPoller(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a poller over a healthy feed", t, func() {
		ctx := context.Background()
		client := &fakeClient{result: model.FeedResult{Roll: 7, CreatedAt: "t1"}}
		sink := &recordingSink{}
		p := feed.NewPoller(client, sink, feed.WithInterval(10*time.Millisecond))

		Convey("When started", func() {
			p.Start(ctx)
			defer p.Stop()

			Convey("Then it collects immediately and keeps ticking", func() {
				So(waitFor(func() bool { return client.fetchCount() >= 3 }), ShouldBeTrue)
				results, errs := sink.counts()
				So(results, ShouldBeGreaterThanOrEqualTo, 3)
				So(errs, ShouldEqual, 0)
			})

			Convey("And it reports running", func() {
				So(p.Running(), ShouldBeTrue)
			})

			Convey("And starting again is a no-op", func() {
				p.Start(ctx)
				So(p.Running(), ShouldBeTrue)
			})
		})

		Convey("When stopped", func() {
			p.Start(ctx)
			p.Stop()

			Convey("Then collection halts", func() {
				So(p.Running(), ShouldBeFalse)
				settled := client.fetchCount()
				time.Sleep(50 * time.Millisecond)
				So(client.fetchCount(), ShouldEqual, settled)
			})
		})
	})

	Convey("Given a poller over a failing feed", t, func() {
		ctx := context.Background()
		client := &fakeClient{err: errors.New("boom")}
		sink := &recordingSink{}
		p := feed.NewPoller(client, sink, feed.WithInterval(10*time.Millisecond))

		Convey("When started", func() {
			p.Start(ctx)
			defer p.Stop()

			Convey("Then errors reach the sink and the loop survives", func() {
				So(waitFor(func() bool { _, errs := sink.counts(); return errs >= 2 }), ShouldBeTrue)
				results, _ := sink.counts()
				So(results, ShouldEqual, 0)
			})
		})
	})
}
