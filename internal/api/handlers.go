package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/chiblo/poimap/internal/core/session"
	"github.com/chiblo/poimap/internal/core/store"
	"github.com/chiblo/poimap/internal/filter"
	"github.com/chiblo/poimap/internal/geo"
	"github.com/chiblo/poimap/internal/geocode"
	"github.com/chiblo/poimap/internal/query"
	"github.com/chiblo/poimap/internal/render"
	"github.com/chiblo/poimap/internal/util"
)

// Handler exposes the live engine over HTTP for the map frontend.
type Handler struct {
	holder     *store.Holder
	engine     *filter.Engine
	syncer     *render.Syncer
	controller *session.Controller
	projection *query.ListProjection
	table      filter.CategoryTable
	geocoder   *geocode.Client
}

// NewHandler wires the API to the engine components.
func NewHandler(holder *store.Holder, engine *filter.Engine, syncer *render.Syncer,
	controller *session.Controller, projection *query.ListProjection,
	table filter.CategoryTable, geocoder *geocode.Client) *Handler {
	return &Handler{
		holder:     holder,
		engine:     engine,
		syncer:     syncer,
		controller: controller,
		projection: projection,
		table:      table,
		geocoder:   geocoder,
	}
}

// GetHealth is the liveness endpoint.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().Format(time.RFC3339),
		"features":  h.holder.Current().Len(),
	})
}

// GetStatus reports the active load session.
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		State:    session.StateIdle.String(),
		StoreLen: h.holder.Current().Len(),
	}
	if s := h.controller.Active(); s != nil {
		p := s.Progress()
		resp.State = s.State().String()
		resp.Decoded = p.Decoded()
		resp.Total, resp.TotalKnown = p.Total()
		resp.Percent = p.Percent()
		if err := s.Err(); err != nil {
			resp.Error = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetFeatures streams the current snapshot as a feature collection. The
// dataset can be large, so it is marshalled with sonic instead of the
// default encoder.
func (h *Handler) GetFeatures(c *gin.Context) {
	collection := h.syncer.Collection()
	data, err := sonic.Marshal(collection)
	if err != nil {
		util.LogErrorf("api: marshalling collection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ApplyFilter installs the filter state given in query parameters, pushes
// the resulting expression to the layers and reports the match set.
func (h *Handler) ApplyFilter(c *gin.Context) {
	state := filter.State{Keyword: c.Query("keyword")}

	if raw := c.Query("period_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "period_days must be an integer"})
			return
		}
		state.PeriodDays = days
	}
	if raw := c.Query("categories"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				// Unknown ids are a no-op contribution by contract.
				state.Categories = append(state.Categories, filter.CategoryID(id))
			}
		}
	}

	h.engine.SetState(state)
	expr := h.engine.Expression()
	h.syncer.ApplyFilter(expr)

	fids := h.engine.Matches()
	c.JSON(http.StatusOK, FilterResponse{
		Matches:    len(fids),
		FIDs:       fids,
		Expression: expr,
	})
}

// GetList recomputes the viewport subset for the given map center and
// returns the display-capped panel list.
func (h *Handler) GetList(c *gin.Context) {
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	zoom, errZoom := strconv.ParseFloat(c.Query("zoom"), 64)
	if errLon != nil || errLat != nil || errZoom != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon, lat and zoom are required"})
		return
	}
	boxPx := 0.0
	if raw := c.Query("box"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			boxPx = v
		}
	}

	h.engine.SetViewport(geo.NewViewportQuery(lon, lat, zoom, boxPx))
	result := h.projection.Build(h.engine.ViewportFeatures())

	items := make([]ListItem, len(result.Items))
	for i, f := range result.Items {
		items[i] = ListItem{
			FID:      f.FID,
			Name:     f.Name,
			Title:    f.TitleSource,
			DateText: f.DateText,
			Link:     f.LinkSource,
		}
	}
	c.JSON(http.StatusOK, ListResponse{
		Items:     items,
		Total:     result.Total,
		Truncated: result.Truncated,
	})
}

// GetCategories lists the configured category chips.
func (h *Handler) GetCategories(c *gin.Context) {
	out := make(map[string][]string, len(h.table))
	for _, id := range h.table.SortedCategories() {
		out[string(id)] = h.table[id]
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// Geocode proxies the external place-name search and returns one coordinate
// for recentering.
func (h *Handler) Geocode(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	result, err := h.geocoder.Search(c.Request.Context(), q)
	if err != nil {
		util.LogWarnf("api: geocode %q: %v", q, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "geocoding failed"})
		return
	}
	c.JSON(http.StatusOK, GeocodeResponse{
		Lon:         result.Lon,
		Lat:         result.Lat,
		DisplayName: result.DisplayName,
	})
}
