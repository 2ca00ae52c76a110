package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sprint-pulse/internal/productive"
)

const maxPageSize = 200

type ServerConfig struct {
	// Token and OrganizationID, when set, must match the request headers.
	Token          string
	OrganizationID string
	Latency        time.Duration
}

type page struct {
	Data     []productive.Resource `json:"data"`
	Included []productive.Resource `json:"included"`
	Meta     pageMeta              `json:"meta"`
}

type pageMeta struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
	PageSize    int `json:"page_size"`
}

// NewHandler serves ds as a read-only Productive API under /api/v2.
func NewHandler(ds *Dataset, cfg ServerConfig) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v2 := r.Group("/api/v2", authenticate(cfg))
	v2.GET("/:collection", func(c *gin.Context) {
		if cfg.Latency > 0 {
			time.Sleep(cfg.Latency)
		}
		serveCollection(c, ds)
	})
	return r
}

func authenticate(cfg ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Auth-Token")
		if token == "" || (cfg.Token != "" && token != cfg.Token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError("Unauthorized"))
			return
		}
		if org := c.GetHeader("X-Organization-Id"); org == "" || (cfg.OrganizationID != "" && org != cfg.OrganizationID) {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError("Forbidden"))
			return
		}
		c.Next()
	}
}

func apiError(title string) gin.H {
	return gin.H{"errors": []gin.H{{"title": title}}}
}

func serveCollection(c *gin.Context, ds *Dataset) {
	collection := c.Param("collection")
	records, ok := ds.Collections[collection]
	if !ok {
		c.JSON(http.StatusNotFound, apiError("Not Found"))
		return
	}

	number, err := queryInt(c, "page[number]", 1)
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, apiError("invalid page[number]"))
		return
	}
	size, err := queryInt(c, "page[size]", 30)
	if err != nil || size < 1 {
		c.JSON(http.StatusBadRequest, apiError("invalid page[size]"))
		return
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	matched := filter(records, c.Request.URL.Query())
	from := min((number-1)*size, len(matched))
	to := min(from+size, len(matched))

	resp := page{
		Data:     matched[from:to],
		Included: include(ds, matched[from:to], c.Query("include")),
		Meta: pageMeta{
			CurrentPage: number,
			TotalPages:  (len(matched) + size - 1) / size,
			TotalCount:  len(matched),
			PageSize:    size,
		},
	}
	if resp.Data == nil {
		resp.Data = []productive.Resource{}
	}

	log.Debug().
		Str("collection", collection).
		Int("page", number).
		Int("count", len(resp.Data)).
		Int("total", len(matched)).
		Msg("mock: served page")
	c.Header("Content-Type", "application/vnd.api+json")
	c.JSON(http.StatusOK, resp)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// filter applies every filter[key]=a,b parameter. Keys match the id, a relationship named by
// the key without its _id suffix, or an attribute named key or key_id.
func filter(records []productive.Resource, q map[string][]string) []productive.Resource {
	type cond struct {
		key    string
		values map[string]bool
	}
	var conds []cond
	for param, vals := range q {
		if !strings.HasPrefix(param, "filter[") || !strings.HasSuffix(param, "]") || len(vals) == 0 {
			continue
		}
		set := map[string]bool{}
		for _, v := range strings.Split(vals[0], ",") {
			set[strings.TrimSpace(v)] = true
		}
		conds = append(conds, cond{key: param[len("filter[") : len(param)-1], values: set})
	}

	var out []productive.Resource
	for _, r := range records {
		keep := true
		for _, c := range conds {
			if !c.values[fieldValue(r, c.key)] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

func fieldValue(r productive.Resource, key string) string {
	if key == "id" {
		return r.ID
	}
	if rel, ok := strings.CutSuffix(key, "_id"); ok {
		if id, ok := r.RelationshipID(rel); ok {
			return id
		}
	}
	var attrs map[string]any
	if err := json.Unmarshal(r.Attributes, &attrs); err != nil {
		return ""
	}
	for _, name := range []string{key, key + "_id"} {
		if v, ok := attrs[name]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// include sideloads the records linked through the named relationships, once each.
func include(ds *Dataset, data []productive.Resource, includes string) []productive.Resource {
	out := []productive.Resource{}
	if includes == "" {
		return out
	}
	seen := map[string]bool{}
	for _, name := range strings.Split(includes, ",") {
		name = strings.TrimSpace(name)
		for _, r := range data {
			rel, ok := r.Relationships[name]
			if !ok || rel.Data == nil {
				continue
			}
			key := rel.Data.Type + "/" + rel.Data.ID
			if seen[key] {
				continue
			}
			if linked, ok := ds.Lookup(rel.Data.Type, rel.Data.ID); ok {
				seen[key] = true
				out = append(out, linked)
			}
		}
	}
	return out
}
