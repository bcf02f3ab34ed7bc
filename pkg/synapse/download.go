package synapse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Downloader fetches the bytes behind a resolved location URL.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// FileDownloader streams a URL into a file on Fs.
type FileDownloader struct {
	HTTPClient *http.Client
	Fs         afero.Fs
}

// NewFileDownloader returns a FileDownloader; nil arguments select
// http.DefaultClient and the OS filesystem.
func NewFileDownloader(client *http.Client, fs afero.Fs) *FileDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileDownloader{HTTPClient: client, Fs: fs}
}

// Download writes the body of a GET on rawURL to dest. A partial file is
// removed on failure.
func (d *FileDownloader) Download(ctx context.Context, rawURL, dest string) (err error) {
	if rawURL == "" || dest == "" {
		return fmt.Errorf("%w: url and destination are required", ErrInvalidArgument)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Method:     http.MethodGet,
			URI:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     http.StatusText(resp.StatusCode),
			Body:       body,
			Header:     resp.Header.Clone(),
		}
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := d.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := d.Fs.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = d.Fs.Remove(dest)
		}
	}()
	if _, err = io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// LoadEntity downloads the first location of the entity at uri into dir and
// returns the local file path. The file is named after the last segment of
// the location path.
func (c *Client) LoadEntity(ctx context.Context, uri, dir string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("%w: uri is required", ErrInvalidArgument)
	}
	entity, err := c.GetRepoEntity(ctx, uri)
	if err != nil {
		return "", err
	}
	if entity == nil {
		return "", fmt.Errorf("%w: no entity at %s", ErrInvalidArgument, uri)
	}
	locationsURI := entity.String("locations")
	if locationsURI == "" {
		return "", fmt.Errorf("entity %s has no locations", uri)
	}

	locations, err := c.GetRepoEntity(ctx, locationsURI)
	if err != nil {
		return "", err
	}
	var results []any
	if locations != nil {
		results, _ = locations["results"].([]any)
	}
	if len(results) == 0 {
		return "", errors.New("entity " + uri + " has no downloadable location")
	}
	location := Entity(asMap(results[0]))
	source := location.String("path")
	if source == "" {
		return "", fmt.Errorf("first location of %s has no path", uri)
	}

	name := fileName(source)
	if name == "" {
		return "", fmt.Errorf("cannot derive a file name from %s", source)
	}
	dest := filepath.Join(dir, name)
	c.logger.Debug("downloading location", "uri", uri, "source", source, "dest", dest)
	if err := c.downloader.Download(ctx, source, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func fileName(source string) string {
	p := source
	if parsed, err := url.Parse(source); err == nil && parsed.Path != "" {
		p = parsed.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
