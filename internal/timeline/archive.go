package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoData is returned by RequestClip when the archive has no footage for
// the requested range (typically right at the live edge). It is an expected
// condition, not a failure.
var ErrNoData = errors.New("no recorded data for requested range")

// ArchiveClient is the navigator's view of the external recording archive.
// It lists recorded ranges and materializes bounded clips; how footage is
// produced or stored is not this package's concern.
type ArchiveClient interface {
	// ListSegments returns all recorded intervals overlapping
	// [dayStartMs, dayEndMs) for the channel. Entries may extend outside
	// the day and may be unsorted or overlapping.
	ListSegments(ctx context.Context, channel Channel, dayStartMs, dayEndMs int64) ([]Segment, error)

	// ListRecordedDates returns the calendar dates ("2006-01-02") that have
	// any footage for the channel.
	ListRecordedDates(ctx context.Context, channel Channel) ([]string, error)

	// RequestClip materializes a playable clip covering [startMs, endMs) and
	// returns its reference, or ErrNoData when nothing is recorded there.
	// May take non-trivial time; honours ctx cancellation.
	RequestClip(ctx context.Context, channel Channel, startMs, endMs int64) (ClipReference, error)

	// ClipURL builds the playable URL for a previously returned reference.
	ClipURL(ref ClipReference) string
}

// HTTPArchive talks to the archive service over its JSON HTTP API.
type HTTPArchive struct {
	baseURL string
	client  *http.Client
}

// NewHTTPArchive returns an archive client for the service at baseURL.
// A nil httpClient falls back to a client with a sane timeout.
func NewHTTPArchive(baseURL string, httpClient *http.Client) *HTTPArchive {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPArchive{baseURL: baseURL, client: httpClient}
}

// ListSegments implements ArchiveClient.ListSegments.
func (a *HTTPArchive) ListSegments(ctx context.Context, channel Channel, dayStartMs, dayEndMs int64) ([]Segment, error) {
	u := fmt.Sprintf("%s/channels/%s/segments?start=%d&end=%d",
		a.baseURL, url.PathEscape(string(channel)), dayStartMs, dayEndMs)
	var out []Segment
	if err := a.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecordedDates implements ArchiveClient.ListRecordedDates.
func (a *HTTPArchive) ListRecordedDates(ctx context.Context, channel Channel) ([]string, error) {
	u := fmt.Sprintf("%s/channels/%s/dates", a.baseURL, url.PathEscape(string(channel)))
	var out []string
	if err := a.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestClip implements ArchiveClient.RequestClip. The archive answers 200
// with {"reference": "..."} when footage exists and 204 (or an empty
// reference) when the range holds no data yet.
func (a *HTTPArchive) RequestClip(ctx context.Context, channel Channel, startMs, endMs int64) (ClipReference, error) {
	u := fmt.Sprintf("%s/channels/%s/clips?start=%d&end=%d",
		a.baseURL, url.PathEscape(string(channel)), startMs, endMs)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return "", ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request clip: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Reference ClipReference `json:"reference"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("request clip: decode response: %w", err)
	}
	if body.Reference == "" {
		return "", ErrNoData
	}
	return body.Reference, nil
}

// ClipURL implements ArchiveClient.ClipURL.
func (a *HTTPArchive) ClipURL(ref ClipReference) string {
	return a.baseURL + "/clips/" + url.PathEscape(string(ref))
}

// getJSON performs a GET and decodes a JSON body into out.
func (a *HTTPArchive) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("archive: unexpected status %d for %s", resp.StatusCode, u)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
