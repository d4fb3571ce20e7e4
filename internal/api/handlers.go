package api

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/export"
	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/spacesedan/nytsentiment/internal/pipeline"
)

type ErrResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type PreviewRow struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
	Score     string `json:"score"`
}

type DatasetView struct {
	models.DatasetOutcome
	Preview []PreviewRow `json:"preview,omitempty"`
}

type AnalyzeResponse struct {
	RunID      string                 `json:"run_id"`
	Comments   DatasetView            `json:"comments"`
	Articles   DatasetView            `json:"articles"`
	Aggregates models.AggregateReport `json:"aggregates"`
	SinkErrors []string               `json:"sink_errors,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MAX_UPLOAD_BYTES); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var in pipeline.Input
	defer func() {
		closeSource(in.Comments)
		closeSource(in.Articles)
	}()
	var err error
	if in.Comments, err = formSource(r.MultipartForm, "comments"); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if in.Articles, err = formSource(r.MultipartForm, "articles"); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if in.Comments == nil && in.Articles == nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("upload a comments or articles file"))
		return
	}

	report, err := s.Pipeline.Run(r.Context(), in)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}

	render.JSON(w, r, AnalyzeResponse{
		RunID:      report.RunID,
		Comments:   view(report.Comments),
		Articles:   view(report.Articles),
		Aggregates: report.Aggregates,
		SinkErrors: report.SinkErrors,
	})
}

// handleExport annotates one uploaded dataset and returns it as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	role := models.Role(chi.URLParam(r, "role"))
	if _, err := dataset.SchemaFor(role); err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return
	}

	format := dataset.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = dataset.FORMAT_CSV
	}
	if format != dataset.FORMAT_CSV && format != dataset.FORMAT_XLSX {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}

	if err := r.ParseMultipartForm(MAX_UPLOAD_BYTES); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, err := formSource(r.MultipartForm, "file")
	if err != nil || src == nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("missing file field"))
		return
	}
	defer closeSource(src)

	outcome, err := s.Pipeline.AnnotateOne(r.Context(), role, src)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	if outcome.Status != models.DATASET_ANNOTATED {
		writeError(w, r, http.StatusUnprocessableEntity, fmt.Errorf("%s", outcome.Error))
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, outcome.Dataset, format); err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(role, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("[API] Failed to write export",
			slog.String("error", err.Error()))
	}
}

// formSource opens the first file under field. A missing field is not an
// error.
func formSource(form *multipart.Form, field string) (*pipeline.Source, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}
	header := form.File[field][0]
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s upload: %w", field, err)
	}
	return &pipeline.Source{Name: header.Filename, Reader: f}, nil
}

func closeSource(src *pipeline.Source) {
	if src == nil {
		return
	}
	if c, ok := src.Reader.(io.Closer); ok {
		c.Close()
	}
}

func view(outcome models.DatasetOutcome) DatasetView {
	v := DatasetView{DatasetOutcome: outcome}
	if outcome.Dataset == nil {
		return v
	}

	schema, _ := dataset.SchemaFor(outcome.Role)
	for _, rec := range outcome.Dataset.Records {
		if len(v.Preview) == PREVIEW_ROWS {
			break
		}
		v.Preview = append(v.Preview, PreviewRow{
			Index:     rec.Index,
			Text:      rec.Get(schema.TextField).Str,
			Sentiment: rec.Get(models.FIELD_SENTIMENT).Str,
			Score:     rec.Get(models.FIELD_SCORE).Str,
		})
	}
	return v
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	slog.Warn("[API] Request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	render.Status(r, status)
	render.JSON(w, r, ErrResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}
