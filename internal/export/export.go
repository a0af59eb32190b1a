// Package export writes a user's transactions to an external sink.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ivanoskov/equilibra/internal/model"
)

type Sink interface {
	Write(ctx context.Context, txns []model.Transaction) error
}

// ParseSink builds a sink from "jsonfile:/path/file.json" or
// "es8:http://elasticsearch:9200".
func ParseSink(out string, logger zerolog.Logger) (Sink, error) {
	bits := strings.SplitN(out, ":", 2)
	if len(bits) != 2 || bits[1] == "" {
		return nil, fmt.Errorf("invalid out path %q, expected [jsonfile:/path/to/file.json] or [es8:http://elasticsearch:9200]", out)
	}

	switch bits[0] {
	case "jsonfile":
		return NewJSONFile(bits[1]), nil
	case "es8":
		return NewElasticsearchV8(logger, bits[1]), nil
	}
	return nil, fmt.Errorf("unknown sink kind %q", bits[0])
}
