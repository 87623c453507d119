package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clothesfinder/backend/internal/domain"
)

const (
	serviceName    = "clothesfinder-backend"
	serviceVersion = "2.0.0"

	noResultsMessage = "Inga resultat hittades – prova att bredda din sökning"
)

// Finder runs item searches
type Finder interface {
	Find(ctx context.Context, request *domain.FindRequest) (*domain.FindResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	finder Finder
}

// NewHandler creates a new HTTP handler
func NewHandler(finder Finder) *Handler {
	return &Handler{finder: finder}
}

// Home is the root liveness probe
func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "ClothesFinder running",
	})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// FindItemRequest is the body of POST /find_item. Every field is optional,
// but either query or item must be present.
type FindItemRequest struct {
	Query    string     `json:"query"`
	Brand    string     `json:"brand"`
	Item     string     `json:"item"`
	Color    string     `json:"color"`
	Style    string     `json:"style"`
	Size     flexString `json:"size"`
	Gender   string     `json:"gender"`
	Kids     flexBool   `json:"kids"`
	PriceMax flexFloat  `json:"price_max"`
	Used     flexBool   `json:"used"`
}

// FindItemResponse is the success body of POST /find_item
type FindItemResponse struct {
	BestMatch  *domain.Listing  `json:"best_match"`
	TopResults []domain.Listing `json:"top_results"`
	Count      int              `json:"count"`
	Query      string           `json:"query"`
	Source     string           `json:"source"`
	Fallback   bool             `json:"fallback"`
}

// FindItem searches all marketplaces for the requested item
func (h *Handler) FindItem(c *gin.Context) {
	if h.finder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search service not configured",
		})
		return
	}

	var req FindItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing or invalid JSON: " + err.Error(),
		})
		return
	}

	request := req.toDomain()
	result, err := h.finder.Find(c.Request.Context(), request)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "query or item is required",
			})
		case errors.Is(err, domain.ErrNoResults):
			c.JSON(http.StatusNotFound, gin.H{
				"message": noResultsMessage,
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "search timed out",
			})
		default:
			log.Printf("[HTTP] find_item failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "internal error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, FindItemResponse{
		BestMatch:  result.BestMatch,
		TopResults: result.TopResults,
		Count:      result.Count,
		Query:      result.Query,
		Source:     result.Source,
		Fallback:   result.Fallback,
	})
}

func (r FindItemRequest) toDomain() *domain.FindRequest {
	return &domain.FindRequest{
		Query: strings.TrimSpace(r.Query),
		Filters: domain.FilterSet{
			Brand:    strings.TrimSpace(r.Brand),
			Item:     strings.TrimSpace(r.Item),
			Color:    strings.TrimSpace(r.Color),
			Style:    strings.TrimSpace(r.Style),
			Size:     strings.TrimSpace(string(r.Size)),
			Gender:   domain.ParseGender(r.Gender),
			Kids:     r.Kids.value,
			PriceMax: r.PriceMax.value,
			Used:     r.Used.value,
		},
	}
}

// flexBool accepts true/false, 1/0 and the strings ja/nej/yes/no/true/false/1/0
type flexBool struct {
	value *bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		b.value = nil
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "ja", "yes", "1", "j", "y":
		v = true
	case "false", "nej", "no", "0", "n":
		v = false
	case "":
		b.value = nil
		return nil
	default:
		return fmt.Errorf("invalid boolean value %s", data)
	}
	b.value = &v
	return nil
}

// flexFloat accepts a JSON number or a numeric string ("450", "450 kr")
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.value = nil
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		raw = strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(raw), "kr"), ":-")
		raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
		raw = strings.ReplaceAll(raw, ",", ".")
		if raw == "" {
			f.value = nil
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("invalid price_max %s", data)
	}
	if v == 0 {
		f.value = nil
		return nil
	}
	f.value = &v
	return nil
}

// flexString accepts a string or a number, so size may be sent as 32 or "32"
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid size %s", data)
	}
	*s = flexString(n.String())
	return nil
}
