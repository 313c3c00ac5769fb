package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
	"github.com/PratikDhanave/web-analytics-service/pkg/tracker"
	"github.com/PratikDhanave/web-analytics-service/pkg/tracker/trackertest"
)

const simulatedUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"

// countingTransport tallies delivery outcomes of the wrapped transport.
type countingTransport struct {
	next         tracker.Transport
	sent, failed atomic.Int64
}

func (t *countingTransport) Send(ctx context.Context, endpoint string, ev tracker.Event) error {
	err := t.next.Send(ctx, endpoint, ev)
	if err != nil {
		t.failed.Add(1)
	} else {
		t.sent.Add(1)
	}
	return err
}

func newSimulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Drive a tracker session against a running service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "endpoint", Usage: "Service base URL", Value: tracker.LocalEndpoint, EnvVars: []string{"ANALYTICS_ENDPOINT"}},
			&cli.StringFlag{Name: "api-key", Usage: "Website API key", Required: true, EnvVars: []string{"ANALYTICS_API_KEY"}},
			&cli.StringFlag{Name: "page", Usage: "URL of the simulated page", Value: "http://localhost:3000/"},
			&cli.IntFlag{Name: "clicks", Usage: "Number of clicks to generate", Value: 10},
			&cli.DurationFlag{Name: "timeout", Usage: "HTTP timeout per event", Value: 10 * time.Second},
			&cli.BoolFlag{Name: "verbose", Usage: "Log every delivery"},
		},
		Action: runSimulate,
	}
}

func runSimulate(c *cli.Context) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	log := logger.New(c.App.ErrWriter, level, logger.WithSource(false))

	tr := &countingTransport{next: &tracker.HTTPTransport{Client: &http.Client{Timeout: c.Duration("timeout")}}}
	page := trackertest.NewPage(c.String("page"),
		trackertest.WithTitle("Simulated page"),
		trackertest.WithUserAgent(simulatedUA),
		trackertest.WithNavigation(0, 120),
		trackertest.WithPaint(tracker.PaintTiming{Name: "first-contentful-paint", StartTime: 480}),
	)
	client := tracker.New(page, tracker.WithTransport(tr), tracker.WithLogger(log))
	defer client.Close()

	if err := client.Init(c.String("api-key"),
		tracker.WithEndpoint(c.String("endpoint")),
		tracker.WithDebug(c.Bool("verbose")),
	); err != nil {
		return err
	}

	for i := 0; i < c.Int("clicks"); i++ {
		page.Click(tracker.Element{TagName: "BUTTON", ID: fmt.Sprintf("cta-%d", i), Text: "Get started"})
	}
	page.EmitEntries(tracker.EntryLargestContentfulPaint, tracker.PerformanceEntry{StartTime: 950})
	page.Submit(tracker.Form{
		ID:     "signup",
		Method: "post",
		Fields: []tracker.FormField{{Name: "email", Value: "sim@example.com"}, {Name: "password", Value: "secret"}},
	})
	page.SetVisibility(tracker.Hidden)
	page.Unload()
	client.Wait()

	fmt.Fprintf(c.App.Writer, "session %s: %d sent, %d failed\n", client.SessionID(), tr.sent.Load(), tr.failed.Load())
	if tr.sent.Load() == 0 {
		return fmt.Errorf("no events were accepted by %s", c.String("endpoint"))
	}
	return nil
}
