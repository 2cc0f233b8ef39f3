package server

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/penwyp/go-habit-timeline/internal/util"
)

const (
	headerRequestID = "X-Request-ID"
	userValueReqID  = "request_id"
)

// instrument tags the request with an ID, then records its status and
// latency under route.
func (s *Server) instrument(route string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		reqID := requestID(ctx)
		ctx.SetUserValue(userValueReqID, reqID)
		ctx.Response.Header.Set(headerRequestID, reqID)

		next(ctx)

		status := ctx.Response.StatusCode()
		elapsed := time.Since(start)
		s.opts.Recorder.IncRequests(route, status)
		s.opts.Recorder.ObserveRequestDuration(route, elapsed)

		util.LogDebug("Request served",
			util.F("request_id", reqID),
			util.F("route", route),
			util.F("uri", string(ctx.RequestURI())),
			util.F("status", status),
			util.F("duration_ms", elapsed.Milliseconds()))
	}
}

// requestContext derives a deadline-bound context carrying the request ID.
func (s *Server) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
	if id, ok := ctx.UserValue(userValueReqID).(string); ok {
		stdCtx = util.ContextWithRequestID(stdCtx, id)
	}
	return stdCtx, cancel
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek(headerRequestID))); header != "" {
		return header
	}
	return uuid.NewString()
}
