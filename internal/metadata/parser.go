package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// RawChroma is a chroma entry of a feed record.
type RawChroma struct {
	ID     int      `json:"id"`
	Colors []string `json:"colors"`
}

// RawSkin is one feed record, keyed by its flat id in the feed document.
type RawSkin struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	SplashPath string      `json:"splashPath"`
	Chromas    []RawChroma `json:"chromas,omitempty"`
}

// ParseFeedFile decodes the feed stored at path.
func ParseFeedFile(path string) ([]RawSkin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFeed(f)
}

// ParseFeed decodes a feed document. The document is either an object mapping
// flat ids to records or a plain array of records. Object key order is kept,
// which decides the winning record per champion.
func ParseFeed(r io.Reader) ([]RawSkin, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read feed start: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, fmt.Errorf("unexpected feed token %v", tok)
	}

	var out []RawSkin
	for dec.More() {
		var key string
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read feed key: %w", err)
			}
			key, _ = keyTok.(string)
		}
		var raw RawSkin
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode feed record %q: %w", key, err)
		}
		if raw.ID == 0 && key != "" {
			if id, err := strconv.Atoi(key); err == nil {
				raw.ID = id
			}
		}
		out = append(out, raw)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read feed end: %w", err)
	}
	return out, nil
}
