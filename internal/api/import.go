package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pageza/comedor/backend/internal/allergen"
	"github.com/pageza/comedor/backend/internal/menuparse"
	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/schedule"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

const (
	// maxUploadSize bounds a single uploaded sheet.
	maxUploadSize = 10 << 20
	// archiveLinkTTL is how long a download link for an archived document lives.
	archiveLinkTTL = 15 * time.Minute
)

// Archiver stores raw uploads and generated documents.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte, contentType string) (string, error)
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

type ImportHandler struct {
	imports     service.IImportService
	authService middleware.TokenValidator
	limiter     middleware.Limiter
	archiver    Archiver
}

// NewImportHandler builds the import endpoints. limiter and archiver are optional.
func NewImportHandler(imports service.IImportService, authService middleware.TokenValidator, limiter middleware.Limiter, archiver Archiver) *ImportHandler {
	return &ImportHandler{imports: imports, authService: authService, limiter: limiter, archiver: archiver}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	chain := []gin.HandlerFunc{middleware.AuthMiddleware(h.authService)}
	if h.limiter != nil {
		chain = append(chain, middleware.RateLimit(h.limiter, middleware.ByUser))
	}
	with := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, chain...), handler)
	}

	router.POST("/menus/bulk-import", with(h.BulkImport)...)
	router.POST("/menus/import-csv", with(h.ImportCSV)...)
	router.POST("/menu-templates/:id/apply", with(h.ApplyTemplate)...)
	router.GET("/imports", middleware.AuthMiddleware(h.authService), h.ListRuns)
	router.GET("/imports/:runId/archive", middleware.AuthMiddleware(h.authService), h.ArchiveLink)
}

// BulkImport places inline menu data (Monday-first) or a stored template
// (Thursday-first) on the calendar.
func (h *ImportHandler) BulkImport(c *gin.Context) {
	var req types.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate: " + err.Error()})
		return
	}

	var summary *types.ImportSummary
	switch {
	case req.TemplateID != nil:
		summary, err = h.imports.ImportTemplate(c.Request.Context(), *req.TemplateID, start)
	case req.MenuData != nil:
		summary, err = h.imports.Import(c.Request.Context(), req.MenuData, service.ImportOptions{
			StartDate:  start,
			Convention: schedule.MondayFirst,
			Source:     service.SourceJSON,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "menuData or templateId is required"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ImportHandler) ApplyTemplate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req types.ApplyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate: " + err.Error()})
		return
	}
	summary, err := h.imports.ImportTemplate(c.Request.Context(), id, start)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ImportCSV parses uploaded weekly sheets, infers allergens and imports the
// result Monday-first.
func (h *ImportHandler) ImportCSV(c *gin.Context) {
	start, err := schedule.ParseDate(c.PostForm("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate: " + err.Error()})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}
	files := append(form.File["files"], form.File["files[]"]...)
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one .csv or .xlsx file is required"})
		return
	}

	sources := make([]menuparse.Source, 0, len(files))
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !menuparse.Supported(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: unsupported file type", name)})
			return
		}
		data, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: %v", name, err)})
			return
		}
		sources = append(sources, menuparse.Source{Name: name, Data: data})
	}

	data, failures := menuparse.ParseSources(sources)
	fileErrors := make([]string, 0, len(failures))
	for _, f := range failures {
		fileErrors = append(fileErrors, f.Error())
	}
	if len(data.Weeks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no sheet could be parsed", "fileErrors": fileErrors})
		return
	}
	stats := allergen.Annotate(data)

	archiveKey := h.archive(c.Request.Context(), parsedSources(sources, failures), data)
	summary, err := h.imports.Import(c.Request.Context(), data, service.ImportOptions{
		StartDate:  start,
		Convention: schedule.MondayFirst,
		Source:     service.SourceCSV,
		ArchiveKey: archiveKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":       summary,
		"fileErrors":    fileErrors,
		"allergenStats": stats,
		"archiveKey":    archiveKey,
	})
}

func (h *ImportHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.imports.Runs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// ArchiveLink returns a short-lived download link for the menu data document
// archived with a run.
func (h *ImportHandler) ArchiveLink(c *gin.Context) {
	if h.archiver == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archiving is not configured"})
		return
	}
	run, err := h.imports.Run(c.Request.Context(), c.Param("runId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if run.ArchiveKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "run has no archived files"})
		return
	}
	url, err := h.archiver.GeneratePresignedURL(c.Request.Context(), run.ArchiveKey+"/"+menuDataObject, archiveLinkTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": int64(archiveLinkTTL.Seconds())})
}

// archive stores the parsed uploads and the generated document under a prefix
// of their own. Archiving is best effort; the returned prefix is empty when
// nothing was stored.
func (h *ImportHandler) archive(ctx context.Context, sources []menuparse.Source, data *types.MenuData) string {
	if h.archiver == nil {
		return ""
	}
	prefix := "imports/" + time.Now().UTC().Format("20060102T150405Z") + "-" + uuid.NewString()
	for _, src := range sources {
		if _, err := h.archiver.Archive(ctx, prefix+"/"+src.Name, src.Data, contentType(src.Name)); err != nil {
			log.WithError(err).Warnf("failed to archive %s", src.Name)
			return ""
		}
	}
	doc, err := json.MarshalIndent(data, "", "  ")
	if err == nil {
		_, err = h.archiver.Archive(ctx, prefix+"/"+menuDataObject, doc, "application/json")
	}
	if err != nil {
		log.WithError(err).Warn("failed to archive menu data")
		return ""
	}
	return prefix
}

const menuDataObject = "menu-data.json"

// parsedSources drops the uploads that failed to parse.
func parsedSources(sources []menuparse.Source, failures []menuparse.FileError) []menuparse.Source {
	failed := make(map[string]bool, len(failures))
	for _, f := range failures {
		failed[f.File] = true
	}
	out := make([]menuparse.Source, 0, len(sources))
	for _, src := range sources {
		if !failed[src.Name] {
			out = append(out, src)
		}
	}
	return out
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxUploadSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadSize))
}

func contentType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
