package middleware

import (
	"bytes"
	"compress/gzip"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-http-stack/types"
	"github.com/saiset-co/sai-http-stack/utils"
)

const (
	compressionLevel     = 6
	compressionThreshold = 1024
)

var compressibleTypes = []string{
	"application/json",
	"application/javascript",
	"application/xml",
	"text/",
	"image/svg+xml",
}

// compressEntry gates response compression on production mode; development
// responses go out uncompressed to keep debugging simple.
func (a *Assembler) compressEntry() types.Entry {
	if !a.env.Production {
		return types.Disabled
	}

	c := newCompressor(a.logger)

	return types.Use(func(ctx *fasthttp.RequestCtx, next types.Next) {
		next(nil)
		c.compressResponse(ctx)
	})
}

type compressor struct {
	logger           types.Logger
	gzipWriterPool   sync.Pool
	brotliWriterPool sync.Pool
	bufferPool       sync.Pool
}

func newCompressor(logger types.Logger) *compressor {
	return &compressor{
		logger: logger,
		gzipWriterPool: sync.Pool{
			New: func() interface{} {
				w, _ := gzip.NewWriterLevel(nil, compressionLevel)
				return w
			},
		},
		brotliWriterPool: sync.Pool{
			New: func() interface{} {
				return brotli.NewWriterLevel(nil, compressionLevel)
			},
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 4096))
			},
		},
	}
}

func (c *compressor) compressResponse(ctx *fasthttp.RequestCtx) {
	body := ctx.Response.Body()
	if len(body) < compressionThreshold || ctx.Response.IsBodyStream() {
		return
	}

	if len(ctx.Response.Header.ContentEncoding()) > 0 {
		return
	}

	if !isCompressible(utils.BytesToString(ctx.Response.Header.ContentType())) {
		return
	}

	algorithm := negotiateEncoding(utils.BytesToString(ctx.Request.Header.Peek(fasthttp.HeaderAcceptEncoding)))
	if algorithm == "" {
		return
	}

	compressed, err := c.compress(algorithm, body)
	if err != nil {
		c.logger.Warn("Response compression failed, sending identity",
			zap.String("algorithm", algorithm),
			zap.Error(err),
		)
		return
	}

	if len(compressed) >= len(body) {
		return
	}

	ctx.Response.Header.Set(fasthttp.HeaderContentEncoding, algorithm)
	ctx.Response.Header.Add(fasthttp.HeaderVary, fasthttp.HeaderAcceptEncoding)
	ctx.Response.SetBody(compressed)
}

func (c *compressor) compress(algorithm string, body []byte) ([]byte, error) {
	buf := c.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		c.bufferPool.Put(buf)
	}()
	buf.Reset()

	switch algorithm {
	case "br":
		w := c.brotliWriterPool.Get().(*brotli.Writer)
		defer c.brotliWriterPool.Put(w)
		w.Reset(buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		w := c.gzipWriterPool.Get().(*gzip.Writer)
		defer c.gzipWriterPool.Put(w)
		w.Reset(buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func negotiateEncoding(acceptEncoding string) string {
	if strings.Contains(acceptEncoding, "br") {
		return "br"
	}
	if strings.Contains(acceptEncoding, "gzip") {
		return "gzip"
	}
	return ""
}

func isCompressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}
