package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// ResponseErrorMessageAsHint expose internal error messages
var ResponseErrorMessageAsHint bool

func init() {
	v := os.Getenv("RESPONSE_ERROR_MESSAGE_AS_HINT")
	ResponseErrorMessageAsHint, _ = strconv.ParseBool(v)
}

type wrapResponse struct {
	status int
	header http.Header
	buf    *bytes.Buffer
}

func (w *wrapResponse) Header() http.Header {
	return w.header
}

func (w *wrapResponse) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *wrapResponse) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *wrapResponse) isJSONContent() bool {
	typ := w.header.Get("Content-Type")
	return strings.HasPrefix(typ, "application/json")
}

type dataResponse struct {
	Data json.RawMessage `json:"data,omitempty"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// WrapResponse wraps successful json bodies into {"data": ...}. Error
// bodies are written as they are.
func WrapResponse(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		wr := &wrapResponse{
			status: http.StatusOK,
			header: http.Header{},
			buf:    &bytes.Buffer{},
		}

		next.ServeHTTP(wr, r)

		for k, v := range wr.header {
			w.Header()[k] = v
		}

		body := wr.buf.Bytes()
		if wr.isJSONContent() && wr.status < http.StatusBadRequest {
			if data, err := json.Marshal(dataResponse{Data: bytes.TrimSpace(body)}); err == nil {
				body = data
				w.Header().Del("Content-Length")
			}
		}

		w.WriteHeader(wr.status)
		_, _ = w.Write(body)
	}

	return http.HandlerFunc(fn)
}
