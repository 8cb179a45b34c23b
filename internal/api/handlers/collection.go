package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokido/internal/album"
	"github.com/codyseavey/pokido/internal/models"
)

const (
	albumKeyHeader = "X-Album-Key"
	maxAlbumKeyLen = 128
)

type AlbumHandler struct {
	store *album.Store
}

func NewAlbumHandler(store *album.Store) *AlbumHandler {
	return &AlbumHandler{store: store}
}

// albumKey reads the album key header, writing a 400 when it is unusable
func albumKey(c *gin.Context) (string, bool) {
	key := c.GetHeader(albumKeyHeader)
	if key == "" {
		return album.DefaultKey, true
	}
	if len(key) > maxAlbumKeyLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("album key exceeds %d characters", maxAlbumKeyLen)})
		return "", false
	}
	return key, true
}

// GetAlbum exports the whole album document
func (h *AlbumHandler) GetAlbum(c *gin.Context) {
	key, ok := albumKey(c)
	if !ok {
		return
	}

	data, err := h.store.Export(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ImportAlbum replaces the album with the posted document
func (h *AlbumHandler) ImportAlbum(c *gin.Context) {
	key, ok := albumKey(c)
	if !ok {
		return
	}

	var state models.AlbumState
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Import(c.Request.Context(), key, state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, album.TotalStats(state))
}

// AddCard adds a scanned card to the album, or bumps its scan count
func (h *AlbumHandler) AddCard(c *gin.Context) {
	key, ok := albumKey(c)
	if !ok {
		return
	}

	var req models.AddCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, entry, err := h.store.AddCard(c.Request.Context(), key, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if entry.ScanCount == 1 {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"card":  entry,
		"stats": album.TotalStats(state),
	})
}

// GetSets lists sets with completion statistics
func (h *AlbumHandler) GetSets(c *gin.Context) {
	state, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, album.SetsWithStats(state))
}

// GetSetCards lists the cards collected for one set
func (h *AlbumHandler) GetSetCards(c *gin.Context) {
	state, ok := h.load(c)
	if !ok {
		return
	}

	setID := c.Param("setId")
	c.JSON(http.StatusOK, gin.H{
		"set":   state.Sets[setID],
		"cards": album.SetCards(state, setID),
	})
}

// GetStats returns collection totals
func (h *AlbumHandler) GetStats(c *gin.Context) {
	state, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, album.TotalStats(state))
}

func (h *AlbumHandler) load(c *gin.Context) (models.AlbumState, bool) {
	key, ok := albumKey(c)
	if !ok {
		return models.AlbumState{}, false
	}

	state, err := h.store.Load(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return models.AlbumState{}, false
	}
	return state, true
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive: %d", n)
	}
	return n, nil
}
