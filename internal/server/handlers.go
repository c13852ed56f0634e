package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmylchreest/yourpalette/internal/colour"
	"github.com/jmylchreest/yourpalette/internal/export"
	imageutil "github.com/jmylchreest/yourpalette/internal/image"
	"github.com/jmylchreest/yourpalette/internal/pipeline"
	"github.com/jmylchreest/yourpalette/internal/render"
	"github.com/jmylchreest/yourpalette/internal/storage"
	"github.com/jmylchreest/yourpalette/internal/version"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// indexData feeds templates/index.html.
type indexData struct {
	Filename     string
	Flash        string
	Records      []colour.ColorRecord
	Methods      []colour.Method
	Spaces       []colour.Space
	Formats      []export.Format
	DefaultCount int
	MinCount     int
	MaxCount     int
	Version      string
}

// processResponse is the success body of POST /api/process-image.
type processResponse struct {
	Success          bool                 `json:"success"`
	OriginalImage    string               `json:"original_image"`
	ProcessedImage   string               `json:"processed_image"`
	Palette          []colour.ColorRecord `json:"palette"`
	ColorCount       int                  `json:"color_count"`
	ClusteringMethod colour.Method        `json:"clustering_method"`
	ColorSpace       colour.Space         `json:"color_space"`
}

// exportRequest is the body of POST /api/export-palette.
type exportRequest struct {
	Palette []colour.ColorRecord `json:"palette"`
	Format  string               `json:"format"`
}

func (s *Server) newIndexData() indexData {
	return indexData{
		Methods:      colour.ValidMethods(),
		Spaces:       colour.ValidSpaces(),
		Formats:      export.ValidFormats(),
		DefaultCount: s.cfg.DefaultColorCount,
		MinCount:     pipeline.MinColorCount,
		MaxCount:     pipeline.MaxColorCount,
		Version:      version.Short(),
	}
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, data indexData) {
	var buf bytes.Buffer
	if err := s.index.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render index", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderIndex(w, http.StatusOK, s.newIndexData())
}

// handleUpload is the form-based flow: the saved original is replaced by its
// composite and the page is rendered with the result.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data := s.newIndexData()

	upload, err := s.receive(r)
	if err != nil {
		s.logger.Warn("upload rejected", "error", err)
		data.Flash = flashMessage(err, s.cfg.AllowedExtensions)
		s.renderIndex(w, statusFor(err), data)
		return
	}

	result, err := s.process(r, upload)
	if err != nil {
		s.logger.Warn("processing failed", "file", upload.name, "error", err)
		data.Flash = flashMessage(err, s.cfg.AllowedExtensions)
		s.renderIndex(w, statusFor(err), data)
		return
	}

	var buf bytes.Buffer
	if err := render.Encode(&buf, upload.name, result.Composite); err == nil {
		err = s.store.Write(upload.name, &buf)
	}
	if err != nil {
		s.logger.Error("failed to store composite", "file", upload.name, "error", err)
		data.Flash = "Failed to save the processed image"
		s.renderIndex(w, http.StatusInternalServerError, data)
		return
	}

	data.Filename = upload.name
	data.Records = result.Records
	s.renderIndex(w, http.StatusOK, data)
}

func (s *Server) handleProcessImage(w http.ResponseWriter, r *http.Request) {
	upload, err := s.receive(r)
	if err != nil {
		s.logger.Warn("upload rejected", "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	result, err := s.process(r, upload)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("processing failed", "file", upload.name, "error", err)
		} else {
			s.logger.Warn("processing failed", "file", upload.name, "error", err)
		}
		writeError(w, status, fmt.Errorf("error processing image: %w", err))
		return
	}

	processed := storage.ProcessedName(upload.name)
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, result.Composite); err == nil {
		err = s.store.Write(processed, &buf)
	}
	if err != nil {
		s.logger.Error("failed to store composite", "file", processed, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Success:          true,
		OriginalImage:    upload.name,
		ProcessedImage:   processed,
		Palette:          result.Records,
		ColorCount:       result.Params.ColorCount,
		ClusteringMethod: result.Params.Method,
		ColorSpace:       result.Params.Space,
	})
}

func (s *Server) handleExportPalette(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
		writeError(w, statusFor(err), err)
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := export.Render(format, req.Palette)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.logger.Debug("palette exported", "format", format, "colours", len(req.Palette))

	// ?download returns the file itself instead of the JSON envelope.
	if r.URL.Query().Has("download") {
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "palette"+format.Extension()))
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, out)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{string(format): out})
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	http.Redirect(w, r, UploadsPath+url.PathEscape(name), http.StatusMovedPermanently)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Short(),
	})
}

// upload is a validated file saved to the store.
type upload struct {
	name   string
	params pipeline.Params
}

// receive validates the multipart upload, saves it under a sanitised name
// and parses the processing parameters.
func (s *Server) receive(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", errPayloadTooLarge, maxBytes.Limit)
		case errors.Is(err, http.ErrNotMultipart):
			return nil, imageutil.ErrNoFile
		default:
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			// Browsers submit an empty filename when nothing was chosen, and
			// such parts are parsed as plain values.
			if _, ok := r.MultipartForm.Value["file"]; ok {
				return nil, imageutil.ErrEmptyFilename
			}
			return nil, imageutil.ErrNoFile
		}
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	defer file.Close()

	if err := imageutil.ValidateUpload(header.Filename, s.cfg.AllowedExtensions); err != nil {
		return nil, err
	}

	name := imageutil.SecureFilename(header.Filename)
	if !imageutil.AllowedFile(name, s.cfg.AllowedExtensions) {
		return nil, fmt.Errorf("%w: %s", imageutil.ErrDisallowedExtension, header.Filename)
	}

	saved, err := s.save(name, file)
	if err != nil {
		return nil, err
	}

	params, warn := pipeline.ParseParams(
		r.FormValue("colorCount"),
		r.FormValue("clusteringMethod"),
		r.FormValue("colorSpace"),
		s.cfg.DefaultParams(),
	)
	if warn != nil {
		s.logger.Warn("request parameters adjusted", "file", saved, "warning", warn)
	}

	return &upload{name: saved, params: params}, nil
}

func (s *Server) save(name string, file multipart.File) (string, error) {
	saved, err := s.store.Save(name, file)
	if err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	s.logger.Debug("upload saved", "file", saved)
	return saved, nil
}

// process decodes the saved original and runs the pipeline over it. The
// original is removed when either step fails.
func (s *Server) process(r *http.Request, u *upload) (*pipeline.Result, error) {
	img, err := s.decodeStored(u.name)
	if err == nil {
		var result *pipeline.Result
		if result, err = s.processor.Process(r.Context(), img, u.params); err == nil {
			return result, nil
		}
	}

	if rerr := s.store.Remove(u.name); rerr != nil {
		s.logger.Warn("failed to remove rejected upload", "file", u.name, "error", rerr)
	}
	return nil, err
}

func (s *Server) decodeStored(name string) (image.Image, error) {
	f, err := s.store.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := imageutil.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// flashMessage returns the user-facing message shown on the upload page.
func flashMessage(err error, allowed []string) string {
	switch {
	case errors.Is(err, imageutil.ErrNoFile):
		return "No file part"
	case errors.Is(err, imageutil.ErrEmptyFilename):
		return "No image selected for uploading"
	case errors.Is(err, imageutil.ErrDisallowedExtension):
		return fmt.Sprintf("Allowed image types are - %s", strings.Join(allowed, ", "))
	case errors.Is(err, imageutil.ErrUnreadableImage):
		return "The uploaded file could not be read as an image"
	case errors.Is(err, errPayloadTooLarge):
		return "The uploaded file is too large"
	default:
		return err.Error()
	}
}
