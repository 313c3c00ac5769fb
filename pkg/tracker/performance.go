package tracker

import (
	"context"
	"math"
	"time"

	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

const firstContentfulPaint = "first-contentful-paint"

// schedulePerformance collects timings now if the page has loaded, otherwise
// settleDelay after the load event. Close abandons a pending collection.
func (c *Client) schedulePerformance() {
	lc, ok := c.page.(Lifecycle)
	if !ok || lc.ReadyState() == ReadyStateComplete {
		c.collectPerformance()
		return
	}

	remove := lc.OnLoad(func() {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			select {
			case <-time.After(c.settleDelay):
				c.collectPerformance()
			case <-c.done:
			}
		}()
	})
	c.addRemover(remove)
}

func (c *Client) collectPerformance() {
	data := map[string]any{}

	if tl, ok := c.page.(PerformanceTimeline); ok {
		if nav, ok := tl.Navigation(); ok {
			data["ttfb"] = nav.ResponseStart - nav.FetchStart
		}
		for _, p := range tl.Paint() {
			if p.Name == firstContentfulPaint {
				data["fcp"] = p.StartTime
			}
		}
	}

	if po, ok := c.page.(PerformanceObserver); ok {
		c.observe(po, EntryLargestContentfulPaint, func(entries []PerformanceEntry) {
			last := entries[len(entries)-1]
			c.trackMetric("lcp", last.StartTime)
		})
		c.observe(po, EntryFirstInput, func(entries []PerformanceEntry) {
			first := entries[0]
			c.trackMetric("fid", first.ProcessingStart-first.StartTime)
		})
		c.observe(po, EntryLayoutShift, func(entries []PerformanceEntry) {
			var cls float64
			for _, e := range entries {
				if !e.HadRecentInput {
					cls += e.Value
				}
			}
			c.trackMetric("cls", cls)
		})
	}

	if len(data) > 0 {
		c.Track("performance", data)
	}
}

func (c *Client) observe(po PerformanceObserver, entryType string, fn func([]PerformanceEntry)) {
	stop, err := po.Observe(entryType, func(entries []PerformanceEntry) {
		if len(entries) == 0 {
			return
		}
		fn(entries)
	})
	if err != nil {
		if c.debug() {
			c.log.Warn(context.Background(), "performance observer unavailable",
				logger.String("entry_type", entryType), logger.Error(err))
		}
		return
	}
	c.addRemover(stop)
}

func (c *Client) trackMetric(metricType string, value float64) {
	c.Track("performance_metric", map[string]any{
		"metricType": metricType,
		"value":      math.Round(value*100) / 100,
	})
}
