package api

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeSSE writes one server-sent event whose data is v as JSON.
func writeSSE(w io.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
