package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techlogistics/backend/internal/application/pipeline"
	"github.com/techlogistics/backend/internal/interfaces/http/dto"
	"github.com/techlogistics/backend/internal/interfaces/http/router"
)

const (
	// Maximum size per uploaded dataset file (20MB)
	maxDatasetFileSize = 20 * 1024 * 1024
)

// PipelineHandler handles pipeline run and report endpoints
type PipelineHandler struct {
	BaseHandler
	service *pipeline.Service
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(service *pipeline.Service) *PipelineHandler {
	return &PipelineHandler{service: service}
}

// RegisterRoutes registers the pipeline routes
func (h *PipelineHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/pipeline").
		POST("/run", h.Run).
		GET("/report", h.Report).
		RegisterRoutes(rg)
}

// Run godoc
//
//	@Summary		Run the cleaning pipeline
//	@Description	Accepts the three dataset files, cleans and audits them, and returns the run summary
//	@Tags			pipeline
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			inventory		formData	file	true	"Inventory master CSV"
//	@Param			transactions	formData	file	true	"Transactions CSV"
//	@Param			feedback		formData	file	true	"Customer feedback CSV"
//	@Success		200	{object}	dto.Response
//	@Failure		400	{object}	dto.Response
//	@Failure		422	{object}	dto.Response
//	@Router			/pipeline/run [post]
func (h *PipelineHandler) Run(c *gin.Context) {
	input := pipeline.RawInput{}
	files := []struct {
		field string
		dst   *[]byte
	}{
		{"inventory", &input.Inventory},
		{"transactions", &input.Transactions},
		{"feedback", &input.Feedback},
	}
	for _, f := range files {
		data, err := readDatasetFile(c, f.field)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		*f.dst = data
	}

	run, err := h.service.Run(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, runSummary(run))
}

// Report godoc
//
//	@Summary		Get the cleaning report of the last run
//	@Description	Returns the full cleaning report as JSON, or as a CSV download with ?format=csv
//	@Tags			pipeline
//	@Produce		json
//	@Param			format	query	string	false	"Response format"	Enums(json, csv)
//	@Success		200	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Router			/pipeline/report [get]
func (h *PipelineHandler) Report(c *gin.Context) {
	report, err := h.service.Report()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		filename := fmt.Sprintf("cleaning-report-%s.csv", report.RunID)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := report.WriteCSV(c.Writer); err != nil {
			_ = c.Error(err)
		}
		return
	}
	h.Success(c, report)
}

func readDatasetFile(c *gin.Context, field string) ([]byte, error) {
	file, header, err := c.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		// An absent file fails that dataset only; the run still cleans
		// and reports the others.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer file.Close()

	if header.Size > maxDatasetFileSize {
		return nil, fmt.Errorf("%s file exceeds maximum size of 20MB", field)
	}
	if err := checkCSVContentType(header); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxDatasetFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", field, err)
	}
	if len(data) > maxDatasetFileSize {
		return nil, fmt.Errorf("%s file exceeds maximum size of 20MB", field)
	}
	return data, nil
}

func checkCSVContentType(header *multipart.FileHeader) error {
	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "", "text/csv", "application/octet-stream", "text/plain", "application/vnd.ms-excel":
		return nil
	}
	return fmt.Errorf("file must be a CSV file, got %s", contentType)
}

func runSummary(run *pipeline.RunResult) dto.RunSummary {
	s := dto.RunSummary{
		RunID:               run.RunID.String(),
		Fingerprint:         run.Fingerprint,
		StartedAt:           run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		DurationMS:          run.Duration.Milliseconds(),
		HealthBefore:        run.Report.AggregateBefore(),
		HealthAfter:         run.Report.AggregateAfter(),
		PhantomTransactions: run.Reconcile.Phantom,
		PhantomRevenue:      run.Reconcile.PhantomRevenue.StringFixed(2),
		PhantomRevenueShare: run.Reconcile.PhantomRevenueShare,
	}
	for _, d := range run.Report.Datasets {
		s.Datasets = append(s.Datasets, dto.DatasetRunSummary{
			Dataset:           d.Dataset,
			Failed:            d.Failed,
			FailureReason:     d.FailureReason,
			Rows:              d.After.Rows,
			HealthBefore:      d.Before.Health,
			HealthAfter:       d.After.Health,
			DuplicatesRemoved: d.DuplicatesRemoved,
			Actions:           d.Actions,
		})
	}
	return s
}
