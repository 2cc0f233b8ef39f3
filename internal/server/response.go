package server

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	codeInvalid     = "INVALID"
	codeNotFound    = "NOT_FOUND"
	codeUnavailable = "UNAVAILABLE"
	codeInternal    = "INTERNAL"
)

func respondJSON(ctx *fasthttp.RequestCtx, status int, payload Envelope) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		util.LogError("Encode response", util.F("error", err.Error()))
		ctx.Error(`{"status":"error","code":"INTERNAL"}`, fasthttp.StatusInternalServerError)
		ctx.Response.Header.SetContentType("application/json")
		return
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func respondSuccess(ctx *fasthttp.RequestCtx, data any) {
	respondJSON(ctx, fasthttp.StatusOK, Envelope{Status: "success", Data: data})
}

func respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= fasthttp.StatusInternalServerError {
		util.LogWarn("Request failed", util.F("uri", string(ctx.RequestURI())), util.F("error", err.Error()))
	}
	respondJSON(ctx, status, Envelope{Status: "error", Code: code, Error: err.Error()})
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, errInvalidParam):
		return fasthttp.StatusBadRequest, codeInvalid
	case errors.Is(err, source.ErrNotFound):
		return fasthttp.StatusNotFound, codeNotFound
	case errors.Is(err, source.ErrUnavailable):
		return fasthttp.StatusServiceUnavailable, codeUnavailable
	default:
		return fasthttp.StatusInternalServerError, codeInternal
	}
}
