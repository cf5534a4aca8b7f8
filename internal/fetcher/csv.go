// Package fetcher parses delimited vehicle data from uploaded files.
package fetcher

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/vero-group/fleet-cli/internal/model"
)

// ErrMalformedInput marks input that could not be decoded or parsed as
// delimited rows.
var ErrMalformedInput = errors.New("malformed input")

// CSVOptions configures the record parser. Delimiter and charset are
// configuration, never inferred from the data.
type CSVOptions struct {
	Delimiter rune   // default ';'
	Charset   string // IANA charset name; default "utf-8"
}

// ReadRecords parses header-first delimited text into flat records keyed by
// the header fields. An empty body yields zero records and no error; the
// caller decides whether that is a failure. Cell values are trimmed of
// surrounding whitespace.
func ReadRecords(r io.Reader, opts CSVOptions) ([]model.Vehicle, error) {
	enc, err := resolveCharset(opts.Charset)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.Comma = ';'
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // allow ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedInput, "fetcher: read header: %v", err)
	}
	for i, field := range header {
		header[i] = strings.TrimSpace(field)
	}

	var records []model.Vehicle
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(ErrMalformedInput, "fetcher: read row %d: %v", len(records)+2, err)
		}

		rec := make(model.Vehicle, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				rec[name] = strings.TrimSpace(row[i])
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// resolveCharset maps an IANA charset name to a decoder. UTF-8 and the empty
// name need no transformation.
func resolveCharset(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, eris.Errorf("fetcher: unknown charset %q", name)
	}
	if enc == encoding.Nop {
		return nil, nil
	}
	return enc, nil
}
