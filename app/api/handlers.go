package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tickerwatch/disclosure-comb/app/cfg"
	"github.com/tickerwatch/disclosure-comb/app/tasks"
	"github.com/tickerwatch/disclosure-comb/app/viewer"
	"github.com/tickerwatch/disclosure-comb/app/watch"
)

func NewHandler(configCache *watch.ConfigCache, scheduler tasks.TaskSchedulerInterface) *Handler {
	appCfg := cfg.Get()
	return &Handler{
		configCache: configCache,
		scheduler:   scheduler,
		outputDir:   appCfg.OutputDir,
		pageSize:    appCfg.PageSize,
	}
}

// GetFeed serves a watch's feed artifact verbatim.
func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Watch configuration not found", "watch", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(h.artifactPath(config))
	if err != nil {
		slog.Error("Feed artifact not readable", "watch", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("X-Feed-Name", name)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetFeedItems serves the consumer view of a watch's artifact: filtered,
// sorted, and paginated. An unreadable or malformed artifact degrades to the
// placeholder view instead of an error response.
func (h *Handler) GetFeedItems(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Watch configuration not found", "watch", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	view := h.loadView(config)

	state := viewer.NewState()
	state.SetQuery(c.Query("q"))
	state.SetSort(viewer.ParseSortMode(c.Query("sort")))
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		state.SetPage(page)
	}

	c.JSON(http.StatusOK, view.Apply(state))
}

func (h *Handler) loadView(config *watch.Config) *viewer.View {
	data, err := os.ReadFile(h.artifactPath(config))
	if err != nil {
		slog.Warn("Feed artifact not readable, serving placeholder", "watch", config.Name, "error", err)
		return viewer.Placeholder(h.pageSize)
	}

	view, err := viewer.Load(data, h.pageSize)
	if err != nil {
		slog.Warn("Feed artifact malformed, serving placeholder", "watch", config.Name, "error", err)
		return viewer.Placeholder(h.pageSize)
	}

	return view
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"loaded_configurations": h.configCache.GetConfigCount(),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	watches := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		info := map[string]interface{}{
			"name":    config.Name,
			"ticker":  config.Ticker,
			"enabled": config.Settings.Enabled,
			"output":  config.Output,
		}

		if stat, err := os.Stat(h.artifactPath(config)); err == nil {
			info["artifact_updated_at"] = stat.ModTime().Format(time.RFC3339)
			if view := h.loadView(config); view != nil {
				info["records"] = view.Len()
			}
		}

		watches = append(watches, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"watches": watches,
		"total":   len(watches),
	})
}

func (h *Handler) APIListWatches(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	watches := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		watches = append(watches, map[string]interface{}{
			"name":             config.Name,
			"ticker":           config.Ticker,
			"page_url":         config.PageURL,
			"feed_url":         config.FeedURL,
			"output":           config.Output,
			"enabled":          config.Settings.Enabled,
			"refresh_interval": config.Settings.GetRefreshInterval().String(),
			"max_items":        config.Settings.MaxItems,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"watches": watches,
		"total":   len(watches),
	})
}

func (h *Handler) APIRefreshWatch(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing watch name parameter"})
		return
	}

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Watch configuration not found", "watch", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Watch configuration not found"})
		return
	}

	if !config.Settings.Enabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Watch is disabled"})
		return
	}

	if err := h.scheduler.EnqueueRefresh(config); err != nil {
		slog.Error("Failed to enqueue refresh task", "watch", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue refresh task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Refresh scheduled",
		"watch":   name,
	})
}

func (h *Handler) artifactPath(config *watch.Config) string {
	return filepath.Join(h.outputDir, config.Output)
}
