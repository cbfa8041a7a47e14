package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"event-finder/internal/models"
	"event-finder/internal/scraper"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EventHandler struct {
	db      *gorm.DB
	scraper *scraper.Service
}

func NewEventHandler(db *gorm.DB, scraperService *scraper.Service) *EventHandler {
	return &EventHandler{db: db, scraper: scraperService}
}

// GetEvents returns stored events with optional filtering
func (h *EventHandler) GetEvents(c *gin.Context) {
	category := c.Query("category")
	location := c.Query("location")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := h.db.Model(&models.Event{})
	if category != "" {
		query = query.Where("category LIKE ?", "%"+category+"%")
	}
	if location != "" {
		query = query.Where("location LIKE ?", "%"+location+"%")
	}

	var events []models.Event
	if err := query.Order("start_time DESC").Limit(limit).Offset(skip).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    events,
		"count":   len(events),
	})
}

// GetEventByID returns a specific event
func (h *EventHandler) GetEventByID(c *gin.Context) {
	eventID := c.Param("id")

	var event models.Event
	if err := h.db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    event,
	})
}

// GetStats returns summary statistics about stored events
func (h *EventHandler) GetStats(c *gin.Context) {
	var total int64
	if err := h.db.Model(&models.Event{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byCategory []bucket
	h.db.Model(&models.Event{}).
		Select("category AS key, COUNT(*) AS count").
		Where("category IS NOT NULL").
		Group("category").
		Scan(&byCategory)

	var bySource []bucket
	h.db.Model(&models.Event{}).
		Select("source AS key, COUNT(*) AS count").
		Group("source").
		Scan(&bySource)

	categories := make(map[string]int64, len(byCategory))
	for _, b := range byCategory {
		categories[b.Key] = b.Count
	}
	sources := make(map[string]int64, len(bySource))
	for _, b := range bySource {
		sources[b.Key] = b.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"total_events": total,
		"categories":   categories,
		"sources":      sources,
	})
}

// RunETL triggers a scrape run and returns its summary
func (h *EventHandler) RunETL(c *gin.Context) {
	var req struct {
		Location          string `json:"location"`
		MaxResults        int    `json:"max_results"`
		MaxPages          int    `json:"max_pages"`
		FetchDescriptions *bool  `json:"fetch_descriptions"`
	}

	// An empty body means "use defaults"; a malformed one is a 400.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	opts := scraper.Options{
		Location:          req.Location,
		MaxResults:        req.MaxResults,
		MaxPages:          req.MaxPages,
		FetchDescriptions: true,
	}
	if opts.Location == "" {
		opts.Location = "portugal--lisbon"
	}
	if req.FetchDescriptions != nil {
		opts.FetchDescriptions = *req.FetchDescriptions
	}

	summary, err := h.scraper.Run(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"summary": summary,
	})
}
