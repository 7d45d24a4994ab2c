package archive

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// isRemote reports whether path is an HTTP(S) URL, valid only at the
// outermost nesting position.
func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

var downloadClient = &fasthttp.Client{
	ReadTimeout:  30 * time.Second,
	WriteTimeout: 30 * time.Second,
}

// downloadRemote fetches url's body into a freshly created temp file named
// after the URL's final path segment, returning the path for the caller to
// hand to PhysicalArchive's canonical-file factory.
func (h *Handler) downloadRemote(url string) (string, error) {
	leaf := url
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		leaf = url[i+1:]
	}
	f, path, err := h.temp.create(leaf)
	if err != nil {
		return "", errors.Wrap(err, "create temp file for download")
	}
	defer f.Close()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := downloadClient.DoTimeout(req, resp, 60*time.Second); err != nil {
		h.temp.discard(path)
		os.Remove(path) //nolint:errcheck // best-effort cleanup of a failed download
		return "", errors.Wrapf(err, "download %s", url)
	}
	if sc := resp.StatusCode(); sc != fasthttp.StatusOK {
		h.temp.discard(path)
		os.Remove(path) //nolint:errcheck
		return "", errors.Errorf("download %s: status %d", url, sc)
	}
	if _, err := f.Write(resp.Body()); err != nil {
		h.temp.discard(path)
		os.Remove(path) //nolint:errcheck
		return "", errors.Wrapf(err, "write temp file for %s", url)
	}
	return path, nil
}
