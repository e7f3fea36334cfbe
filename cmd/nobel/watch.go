package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/nobel/internal/events"
	"github.com/alfredjeanlab/nobel/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow prize changes as they happen",
	Long: `Follow prize changes. With --nats (or NOBEL_NATS_URL) events are read from
NATS; otherwise the server's /events/stream endpoint is used.`,
	GroupID: "changes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		topic, _ := cmd.Flags().GetString("topic")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if natsURL != "" {
			return watchNATS(ctx, natsURL, topic, os.Stdout)
		}
		return watchSSE(ctx, serverURL, topic, os.Stdout)
	},
}

func init() {
	watchCmd.Flags().String("nats", os.Getenv("NOBEL_NATS_URL"), "NATS server URL")
	watchCmd.Flags().String("topic", events.TopicAll, "topic pattern to follow")
}

// formatEvent renders one event line for the terminal or as JSON.
func formatEvent(topic string, data []byte, now time.Time) string {
	if jsonOutput {
		return string(data)
	}
	summary, err := events.Describe(topic, data)
	if err != nil {
		summary = topic + " " + string(data)
	}
	return ui.RenderMuted(now.Format("15:04:05")) + " " + summary
}

// watchNATS prints every message on topic until ctx is done.
func watchNATS(ctx context.Context, natsURL, topic string, w io.Writer) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Fprintln(w, formatEvent(msg.Topic, msg.Data, time.Now()))
		}
	}
}

// watchSSE follows the server's event stream until ctx is done.
func watchSSE(ctx context.Context, baseURL, topic string, w io.Writer) error {
	u := strings.TrimRight(baseURL, "/") + "/events/stream"
	if topic != "" && topic != events.TopicAll {
		u += "?topics=" + url.QueryEscape(topic)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connecting to event stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream: HTTP %d", resp.StatusCode)
	}

	err = readSSE(resp.Body, func(event, data string) {
		fmt.Fprintln(w, formatEvent(event, []byte(data), time.Now()))
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readSSE calls fn for every complete event block in r. Comment lines
// (keepalives) are skipped.
func readSSE(r io.Reader, fn func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimPrefix(line, "data:")
		case line == "":
			if event != "" || data != "" {
				fn(event, data)
			}
			event, data = "", ""
		}
	}
	return scanner.Err()
}
