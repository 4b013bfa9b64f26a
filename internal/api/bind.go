package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/park285/chess-session-server/pkg/chessdto"
)

const maxBodyBytes = 1 << 16

// bind decodes a JSON body into dst, or hands form values to fromForm for form-encoded bodies.
// An empty body leaves dst untouched.
func bind(r *http.Request, dst any, fromForm func(url.Values)) error {
	if isForm(r) {
		r.Body = io.NopCloser(io.LimitReader(r.Body, maxBodyBytes))
		if err := r.ParseForm(); err != nil {
			return chessdto.ErrBadRequestBody
		}
		fromForm(r.PostForm)
		return nil
	}
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return chessdto.ErrBadRequestBody
	}
	return nil
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded"
}
