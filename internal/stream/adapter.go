// Package stream adapts a reservation.QueryResult channel into a chunked,
// newline-delimited-JSON HTTP response — this repo's stand-in for the gRPC
// server-streaming transport the core system design doesn't specify a wire
// format for (see the Open Question note in DESIGN.md). Cancellation is
// driven by the request's context rather than channel-close detection,
// which is the idiomatic Go equivalent of the original's "send fails once
// the receiver is dropped" signal.
package stream

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/shiva/rsvp/internal/model"
	"github.com/shiva/rsvp/internal/reservation"
)

// wireResult is the JSON shape written per line: exactly one of
// reservation/error is populated, mirroring the channel's
// Result<reservation, error> items.
type wireResult struct {
	Reservation *model.Reservation `json:"reservation,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// WriteNDJSON drains results into w as newline-delimited JSON, flushing
// after every item so the client sees them as they arrive rather than
// buffered until the stream ends. It returns once results is closed or
// r's context is cancelled (the client disconnected), whichever comes
// first.
func WriteNDJSON(w http.ResponseWriter, r *http.Request, results <-chan reservation.QueryResult) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)

	ctx := r.Context()
	for {
		select {
		case result, ok := <-results:
			if !ok {
				return
			}

			item := wireResult{}
			if result.Err != nil {
				item.Error = result.Err.Error()
			} else {
				item.Reservation = &result.Reservation
			}

			if err := enc.Encode(item); err != nil {
				log.Printf("[stream] write failed, client likely gone: %v", err)
				return
			}
			if canFlush {
				flusher.Flush()
			}
		case <-ctx.Done():
			log.Printf("[stream] client disconnected: %v", ctx.Err())
			return
		}
	}
}
