package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher turns a URL into parsed page markup. Implementations are free
// to render JavaScript, rotate identity or proxy requests; callers only
// see the parsed document or a typed failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// ErrNotFound reports a page that the site no longer serves.
var ErrNotFound = errors.New("fetch: page not found")

// RateLimitError reports that the site is refusing requests because we
// are sending too many of them.
type RateLimitError struct {
	Code int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("fetch: rate limited (status %d)", e.Code)
}

// IsRateLimited reports whether err carries a rate-limit signal.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
