// Package handlers provides HTTP handlers for the lookups module.
package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/cache"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/server"
	"github.com/samber/lo"
)

// GetLookupsRequest selects lists by name. An empty Names returns every
// registered list; an empty Active means active only.
type GetLookupsRequest struct {
	Names  string `query:"names"`
	Active string `query:"active"`
}

type GetLookupStatsRequest struct{}

// LookupsResponse maps each requested list name to its items.
type LookupsResponse map[string][]crud.ListItem

type LookupStatsResponse struct {
	Lists     []string `json:"lists"`
	Cached    bool     `json:"cached"`
	Hits      int64    `json:"hits"`
	Misses    int64    `json:"misses"`
	Evictions int64    `json:"evictions"`
	Size      int64    `json:"size"`
	HitRate   float64  `json:"hitRate"`
}

// ListSource is what the handler needs from the shared lists.
type ListSource interface {
	FindList(ctx context.Context, active bool, names ...string) ([][]crud.ListItem, error)
	Names() []string
	Metrics() (cache.Metrics, bool)
}

type LookupHandler struct {
	lists  ListSource
	logger logger.Logger
}

func NewLookupHandler(lists ListSource, l logger.Logger) *LookupHandler {
	return &LookupHandler{
		lists:  lists,
		logger: l,
	}
}

// GetLookups handles GET /lookups?names=a,b&active=true.
func (h *LookupHandler) GetLookups(req GetLookupsRequest, ctx server.HandlerContext) (LookupsResponse, server.IAPIError) {
	active := true
	if req.Active != "" {
		parsed, err := strconv.ParseBool(req.Active)
		if err != nil {
			return nil, server.NewBadRequestError("active must be a boolean")
		}
		active = parsed
	}

	names := parseNames(req.Names)
	if len(names) == 0 {
		names = h.lists.Names()
	}

	found, err := h.lists.FindList(ctx.Echo.Request().Context(), active, names...)
	if err != nil {
		if errors.Is(err, crud.ErrUnknownRepository) {
			return nil, server.NewBadRequestError(err.Error())
		}
		h.logger.Error().Err(err).Str("names", req.Names).Msg("Failed to load lookups")
		return nil, server.NewInternalServerError("Failed to retrieve lookups")
	}

	response := make(LookupsResponse, len(names))
	for i, name := range names {
		response[name] = found[i]
	}
	return response, nil
}

// GetLookupStats handles GET /lookups/stats.
func (h *LookupHandler) GetLookupStats(_ GetLookupStatsRequest, _ server.HandlerContext) (*LookupStatsResponse, server.IAPIError) {
	response := &LookupStatsResponse{Lists: h.lists.Names()}

	metrics, ok := h.lists.Metrics()
	if !ok {
		return response, nil
	}

	response.Cached = true
	response.Hits = metrics.Hits
	response.Misses = metrics.Misses
	response.Evictions = metrics.Evictions
	response.Size = metrics.TotalSize
	response.HitRate = metrics.HitRate()
	return response, nil
}

func parseNames(raw string) []string {
	names := lo.Map(strings.Split(raw, ","), func(name string, _ int) string {
		return strings.TrimSpace(name)
	})
	return lo.Uniq(lo.Compact(names))
}

// RegisterRoutes registers lookup HTTP routes. The lists are returned
// without the response envelope so select widgets can bind them directly.
func (h *LookupHandler) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	server.GET(hr, r, "/lookups", h.GetLookups,
		server.WithRawResponse(),
		server.WithTags("lookups"),
	)
	server.GET(hr, r, "/lookups/stats", h.GetLookupStats, server.WithTags("lookups"))
}
