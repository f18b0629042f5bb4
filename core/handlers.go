package core

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/mo"
)

type Handlers interface {
	PostEvents(gctx *gin.Context)
	GetEvents(gctx *gin.Context)
	DeleteEvents(gctx *gin.Context)
	PatchEvents(gctx *gin.Context)
	ExportEvents(gctx *gin.Context)
}

// PatchRequest distinguishes a missing field (nil) from an explicit empty one.
type PatchRequest struct {
	Author *string `json:"author"`
	Dates  *string `json:"dates"`
	Times  *string `json:"times"`
	Title  *string `json:"title"`
	Info   *string `json:"info"`
}

func (r PatchRequest) Params() ModifyParams {
	return ModifyParams{
		Author: optional(r.Author),
		Dates:  optional(r.Dates),
		Times:  optional(r.Times),
		Title:  optional(r.Title),
		Info:   optional(r.Info),
	}
}

func optional(value *string) mo.Option[string] {
	if value == nil {
		return mo.None[string]()
	}

	return mo.Some(*value)
}

type handlers struct {
	operations Operations
}

func NewHandlers(operations Operations) Handlers {
	return &handlers{operations: operations}
}

func (h *handlers) PostEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var params AddParams

	err := gctx.ShouldBindJSON(&params)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	event, err := h.operations.Add(ctx, params)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("adding event failed")
		gctx.AbortWithStatusJSON(statusFor(err), NewError("adding event failed", err))

		return
	}

	gctx.JSON(http.StatusCreated, event)
}

// GetEvents searches with ?q=, filters with ?year= and ?month=, or lists
// everything when neither is given.
func (h *handlers) GetEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	if term, ok := gctx.GetQuery("q"); ok {
		gctx.JSON(http.StatusOK, h.operations.Search(ctx, term))
		return
	}

	yearParam, hasYear := gctx.GetQuery("year")
	if !hasYear {
		gctx.JSON(http.StatusOK, h.operations.List(ctx))
		return
	}

	year, err := strconv.Atoi(yearParam)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("parameter 'year' is invalid")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("parameter 'year' is invalid", err))

		return
	}

	monthParam, hasMonth := gctx.GetQuery("month")
	if !hasMonth {
		gctx.JSON(http.StatusOK, h.operations.ByYear(ctx, year))
		return
	}

	month, err := strconv.Atoi(monthParam)
	if err != nil || month < 1 || month > 12 {
		log.Ctx(ctx).Error().Err(err).Msg("parameter 'month' is invalid")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("parameter 'month' is invalid", err))

		return
	}

	gctx.JSON(http.StatusOK, h.operations.ByMonth(ctx, year, time.Month(month)))
}

func (h *handlers) DeleteEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	term, ok := requireTerm(gctx)
	if !ok {
		return
	}

	result, err := h.operations.Remove(ctx, term)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("removing event failed")
		gctx.AbortWithStatusJSON(statusFor(err), NewError("removing event failed", err))

		return
	}

	respondResult(gctx, result)
}

func (h *handlers) PatchEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	term, ok := requireTerm(gctx)
	if !ok {
		return
	}

	var request PatchRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	result, err := h.operations.Modify(ctx, term, request.Params())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("modifying event failed")
		gctx.AbortWithStatusJSON(statusFor(err), NewError("modifying event failed", err))

		return
	}

	respondResult(gctx, result)
}

func (h *handlers) ExportEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var matches Matches
	if term := gctx.Query("q"); term != "" {
		matches = h.operations.Search(ctx, term)
	} else {
		matches = h.operations.List(ctx)
	}

	if len(matches) == 0 {
		gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("no events to export", ErrEventNotFound))
		return
	}

	var buf bytes.Buffer

	err := EncodeICS(&buf, matches.Events(), time.Now())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("export failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("export failed", err))

		return
	}

	gctx.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func requireTerm(gctx *gin.Context) (string, bool) {
	term := gctx.Query("q")
	if len(term) == 0 {
		log.Ctx(gctx.Request.Context()).Error().Msg("parameter 'q' is required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("parameter 'q' is required"))

		return "", false
	}

	return term, true
}

// respondResult answers 204 when the mutation was applied, 404 when nothing
// matched and 409 with the candidates when the term was ambiguous.
func respondResult(gctx *gin.Context, result Result) {
	switch {
	case result.Applied:
		gctx.AbortWithStatus(http.StatusNoContent)
	case len(result.Candidates) == 0:
		gctx.AbortWithStatusJSON(http.StatusNotFound, result)
	default:
		gctx.AbortWithStatusJSON(http.StatusConflict, result)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, ErrEventNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
