package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	fastshot "github.com/opus-domini/fast-shot"
)

func client(baseURL string, timeout time.Duration) fastshot.ClientHttpMethods {
	c := fastshot.NewClient(baseURL)

	return c.Config().SetTimeout(timeout).
		Config().SetFollowRedirects(true).
		Header().Add("User-Agent", "memberqr").
		Build()
}

// PageStatus is the result of probing one public URL.
type PageStatus struct {
	URL  string
	Code int
	OK   bool
}

// ProbePage issues a single GET for pageURL. Transport failures are returned as errors,
// HTTP error statuses are reported in PageStatus.
func ProbePage(ctx context.Context, pageURL string, timeout time.Duration) (PageStatus, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return PageStatus{}, fmt.Errorf("invalid page url %q", pageURL)
	}

	base := u.Scheme + "://" + u.Host
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	resp, err := client(base, timeout).
		GET(path).
		Context().Set(ctx).
		Header().Add("Accept", "text/html").
		Send()
	if err != nil {
		return PageStatus{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body().Close()

	return PageStatus{
		URL:  pageURL,
		Code: resp.Status().Code(),
		OK:   !resp.Status().IsError(),
	}, nil
}
