package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	defaultTopN      = 10
	maxTopN          = 100
)

type jarResponse struct {
	ID          uint64    `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	TipCount    uint64    `json:"tip_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type standingResponse struct {
	Rank     int    `json:"rank"`
	JarID    uint64 `json:"jar_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Owner    string `json:"owner"`
	TipCount uint64 `json:"tip_count"`
}

type exchangeResponse struct {
	Rate    uint64 `json:"rate"`
	Reserve uint64 `json:"reserve"`
	Supply  uint64 `json:"supply"`
}

func newJarResponse(j ledger.TipJar) jarResponse {
	return jarResponse{
		ID:          j.ID,
		Owner:       j.Owner,
		Name:        j.Name,
		Description: j.Description,
		Category:    string(j.Category),
		Active:      j.Active,
		TipCount:    j.TipCount,
		CreatedAt:   j.CreatedAt.UTC(),
	}
}

// InstallAPI registers the public routes with r.
func (s *HTTPServer) InstallAPI(r *gin.Engine) {
	r.GET("/health", s.healthHandler)
	r.GET("/api/v1/exchange", s.exchangeHandler)
	r.GET("/api/v1/leaderboard", s.leaderboardHandler)
	r.GET("/api/v1/jars", s.listJarsHandler)
	r.GET("/api/v1/jars/:id", s.getJarHandler)
}

func renderError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// queryUint reads an optional non-negative integer query parameter,
// capped at limit when limit is positive.
func queryUint(c *gin.Context, key string, def, limit uint64) (uint64, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		renderError(c, http.StatusBadRequest, "invalid "+key)
		return 0, false
	}
	if limit > 0 {
		n = min(n, limit)
	}
	return n, true
}

func (s *HTTPServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) exchangeHandler(c *gin.Context) {
	ex := s.ledger.Exchange()
	c.JSON(http.StatusOK, exchangeResponse{Rate: ex.Rate, Reserve: ex.Reserve, Supply: ex.Supply})
}

func (s *HTTPServer) leaderboardHandler(c *gin.Context) {
	n, ok := queryUint(c, "n", defaultTopN, maxTopN)
	if !ok {
		return
	}

	standings := s.ledger.TopJars(int(n))
	out := make([]standingResponse, len(standings))
	for i, st := range standings {
		out[i] = standingResponse{
			Rank:     st.Rank,
			JarID:    st.JarID,
			Name:     st.Name,
			Category: string(st.Category),
			Owner:    st.Owner,
			TipCount: st.TipCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"standings": out})
}

func (s *HTTPServer) listJarsHandler(c *gin.Context) {
	offset, ok := queryUint(c, "offset", 0, 0)
	if !ok {
		return
	}
	limit, ok := queryUint(c, "limit", defaultListLimit, maxListLimit)
	if !ok {
		return
	}

	total := s.ledger.TipJarCount()
	out := []jarResponse{}
	if offset < total {
		for _, j := range s.ledger.ListTipJars(int(offset), int(limit)) {
			out = append(out, newJarResponse(j))
		}
	}
	c.JSON(http.StatusOK, gin.H{"jars": out, "total": total})
}

func (s *HTTPServer) getJarHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		renderError(c, http.StatusBadRequest, "invalid jar id")
		return
	}

	jar, err := s.ledger.TipJar(id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		renderError(c, http.StatusNotFound, "tip jar not found")
		return
	case err != nil:
		s.logger.Error(c.Request.Context(), "get tip jar", "error", err.Error())
		renderError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}
	c.JSON(http.StatusOK, newJarResponse(jar))
}
