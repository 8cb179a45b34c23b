package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokido/internal/models"
	"github.com/codyseavey/pokido/internal/services"
)

type CardHandler struct {
	scanService *services.ScanService
	spooler     *services.UploadSpooler
}

func NewCardHandler(scanService *services.ScanService, spooler *services.UploadSpooler) *CardHandler {
	return &CardHandler{
		scanService: scanService,
		spooler:     spooler,
	}
}

// locale picks the response language from ?lang= or Accept-Language
func (h *CardHandler) locale(c *gin.Context) string {
	return h.scanService.Presenter().MatchLocale(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// AnalyzeImage identifies the card in an uploaded photo (multipart field "file")
func (h *CardHandler) AnalyzeImage(c *gin.Context) {
	locale := h.locale(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.Translate(locale, "errNoFile")})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.Translate(locale, "errNoFile")})
		return
	}
	defer src.Close()

	path, err := h.spooler.Spool(src)
	if err != nil {
		respondError(c, err, locale, "errNoFile")
		return
	}
	defer h.spooler.Discard(path)

	imageData, err := os.ReadFile(path)
	if err != nil {
		respondError(c, err, locale, "errNoFile")
		return
	}

	card, err := h.scanService.Scan(c.Request.Context(), imageData, locale)
	if err != nil {
		respondError(c, err, locale, "errNoName")
		return
	}

	c.JSON(http.StatusOK, identificationResponse(card))
}

// SearchCards resolves a manually typed name and optional card number
func (h *CardHandler) SearchCards(c *gin.Context) {
	locale := h.locale(c)

	card, err := h.scanService.Lookup(
		c.Request.Context(),
		c.Query("name"),
		c.Query("number"),
		models.NormalizeLanguage(c.Query("language")),
		locale,
	)
	if err != nil {
		respondError(c, err, locale, "errNameRequired")
		return
	}

	c.JSON(http.StatusOK, identificationResponse(card))
}

// GetCardQR returns a PNG QR code linking to the card's catalog page
func (h *CardHandler) GetCardQR(c *gin.Context) {
	png, err := services.CardQRCode(c.Param("id"))
	if err != nil {
		respondError(c, err, h.locale(c), "errBadRequest")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// GetRecentScans lists the latest scan attempts
func (h *CardHandler) GetRecentScans(c *gin.Context) {
	limit := 50
	if v, ok := c.GetQuery("limit"); ok {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}

	records, err := h.scanService.RecentScans(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetTranslations returns the UI string table for a locale
func (h *CardHandler) GetTranslations(c *gin.Context) {
	table, ok := services.Translations(c.Param("lang"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported locale"})
		return
	}
	c.JSON(http.StatusOK, table)
}

func identificationResponse(card *models.ResolvedCard) models.IdentificationResponse {
	return models.IdentificationResponse{
		Records: []models.IdentificationRecord{{Identification: *card}},
	}
}
