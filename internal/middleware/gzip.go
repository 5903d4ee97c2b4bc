package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

var gzipWriters = sync.Pool{
	New: func() any {
		zw, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return zw
	},
}

type compressWriter struct {
	http.ResponseWriter
	zw *gzip.Writer
}

func (c *compressWriter) start() {
	if c.zw != nil {
		return
	}
	h := c.Header()
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
	h.Del("Content-Length")

	c.zw = gzipWriters.Get().(*gzip.Writer)
	c.zw.Reset(c.ResponseWriter)
}

func (c *compressWriter) WriteHeader(statusCode int) {
	if statusCode != http.StatusNoContent && statusCode != http.StatusNotModified {
		c.start()
	}
	c.ResponseWriter.WriteHeader(statusCode)
}

func (c *compressWriter) Write(p []byte) (int, error) {
	c.start()
	return c.zw.Write(p)
}

func (c *compressWriter) Close() error {
	if c.zw == nil {
		return nil
	}
	err := c.zw.Close()
	gzipWriters.Put(c.zw)
	c.zw = nil
	return err
}

type decompressReader struct {
	zr   *gzip.Reader
	body io.ReadCloser
}

func (d *decompressReader) Read(p []byte) (int, error) {
	return d.zr.Read(p)
}

func (d *decompressReader) Close() error {
	if err := d.zr.Close(); err != nil {
		return err
	}
	return d.body.Close()
}

// GzipMiddleware распаковывает тело запроса с Content-Encoding: gzip
// и сжимает ответ, если клиент поддерживает gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			r.Body = &decompressReader{zr: zr, body: r.Body}
			r.Header.Del("Content-Encoding")
			r.ContentLength = -1
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		cw := &compressWriter{ResponseWriter: w}
		defer cw.Close()

		next.ServeHTTP(cw, r)
	})
}
