package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/gorilla/schema"

	"review_analyzer/internal/domain"
)

// Accepts the zero-padded YYYY-MM-DD form as well as unpadded month and day.
const queryDateLayout = "2006-1-2"

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

type filterParams struct {
	Location  string `schema:"location"`
	StartDate string `schema:"start_date"`
	EndDate   string `schema:"end_date"`
}

type createParams struct {
	ReviewBody string `schema:"ReviewBody"`
	Location   string `schema:"Location"`
}

// firstValues keeps only the first value of every key; repeated parameters are ignored.
func firstValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		if len(vs) > 0 {
			out[k] = vs[:1]
		}
	}
	return out
}

// parseFilterParams decodes a raw query string. Pairs with bad escapes or ';' separators
// are rejected instead of dropped.
func parseFilterParams(rawQuery string) (filterParams, error) {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return filterParams{}, &domain.ParseError{Param: "query", Err: err}
	}
	var p filterParams
	if err := decoder.Decode(&p, firstValues(q)); err != nil {
		return filterParams{}, &domain.ParseError{Param: "query", Err: err}
	}
	return p, nil
}

// query converts the date strings. Empty dates impose no bound.
func (p filterParams) query() (domain.FilterQuery, error) {
	q := domain.FilterQuery{Location: p.Location}
	var err error
	if q.StartDate, err = parseDate("start_date", p.StartDate); err != nil {
		return domain.FilterQuery{}, err
	}
	if q.EndDate, err = parseDate("end_date", p.EndDate); err != nil {
		return domain.FilterQuery{}, err
	}
	return q, nil
}

func parseDate(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(queryDateLayout, s)
	if err != nil {
		return nil, &domain.ParseError{Param: name, Err: fmt.Errorf("%q does not match format YYYY-MM-DD", s)}
	}
	return &t, nil
}

// parseCreateParams reads an url-encoded body of at most the declared Content-Length.
// Bodies above maxBytes are rejected, whether declared or streamed.
func parseCreateParams(w http.ResponseWriter, r *http.Request, maxBytes int64) (createParams, error) {
	if r.ContentLength > maxBytes {
		return createParams{}, &domain.ParseError{Param: "body", Err: fmt.Errorf("exceeds %d bytes", maxBytes)}
	}
	var src io.Reader = http.MaxBytesReader(w, r.Body, maxBytes)
	if r.ContentLength >= 0 {
		src = io.LimitReader(src, r.ContentLength)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return createParams{}, &domain.ParseError{Param: "body", Err: fmt.Errorf("exceeds %d bytes", tooBig.Limit)}
		}
		return createParams{}, &domain.ParseError{Param: "body", Err: err}
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return createParams{}, &domain.ParseError{Param: "body", Err: err}
	}
	// raw bytes and %-escapes both land in the decoded values
	for name, vs := range form {
		for _, v := range vs {
			if !utf8.ValidString(name) || !utf8.ValidString(v) {
				return createParams{}, &domain.ParseError{Param: "body", Err: errors.New("not valid UTF-8")}
			}
		}
	}
	var p createParams
	if err := decoder.Decode(&p, firstValues(form)); err != nil {
		return createParams{}, &domain.ParseError{Param: "body", Err: err}
	}
	return p, nil
}
