package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/histview/internal/artifact"
)

const sessionHeader = "X-Session-ID"

// uploadResponse is the body of a successful upload.
type uploadResponse struct {
	Success     bool   `json:"success"`
	SessionID   string `json:"session_id"`
	Filename    string `json:"filename"`
	BrowserType string `json:"browser_type"`
	Message     string `json:"message"`
}

// recordsResponse is the body of the four record endpoints.
type recordsResponse[T any] struct {
	Data        []T    `json:"data"`
	BrowserType string `json:"browser_type"`
	Status      string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	defer r.Body.Close()

	part, err := filePart(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		httpError(w, http.StatusBadRequest, "No file selected")
		return
	}
	defer part.Close()

	if !allowedExtension(part.FileName(), s.cfg.AllowedExtensions) {
		httpError(w, http.StatusBadRequest, "%s", invalidTypeMessage(s.cfg.AllowedExtensions))
		return
	}

	id := uuid.New().String()
	sess := &session{
		id:       id,
		filename: sanitizeFilename(part.FileName()),
		dir:      filepath.Join(s.uploadDir, id),
	}

	dest := filepath.Join(sess.dir, sess.filename)
	if !isWithinDir(dest, s.uploadDir) {
		httpError(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	if err := saveUpload(part, sess.dir, dest); err != nil {
		os.RemoveAll(sess.dir)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.logger.Error("saving upload", "session", id, "error", err)
		httpError(w, http.StatusInternalServerError, "Error processing file: %v", err)
		return
	}

	eng, err := artifact.Open(r.Context(), dest,
		artifact.WithDriver(s.driver),
		artifact.WithLogger(s.logger.With("session", id)),
	)
	if err != nil {
		os.RemoveAll(sess.dir)
		httpError(w, http.StatusInternalServerError, "Error processing file: %v", err)
		return
	}
	sess.engine = eng
	sess.created = time.Now()
	s.sessions.add(sess)

	family := eng.Family()
	s.logger.Info("artifact uploaded",
		"session", id, "filename", sess.filename, "family", family, "tables", len(eng.Tables()))

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:     true,
		SessionID:   id,
		Filename:    sess.filename,
		BrowserType: string(family),
		Message:     fmt.Sprintf("Successfully loaded %s database", family.Title()),
	})
}

// filePart returns the first multipart part named "file" that carries a
// file name.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("no file part")
			}
			return nil, err
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func saveUpload(src io.Reader, dir, dest string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// handleRecords serves one record family from the selected session.
func handleRecords[T any](s *Server, fetch func(*artifact.Engine, context.Context) (artifact.Result[T], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(sessionHeader)
		if id == "" {
			id = r.URL.Query().Get("session")
		}

		sess, ok := s.sessions.get(id)
		if !ok {
			if id != "" {
				httpError(w, http.StatusBadRequest, "Unknown session")
				return
			}
			httpError(w, http.StatusBadRequest, "No database loaded")
			return
		}

		sess.mu.Lock()
		res, err := fetch(sess.engine, r.Context())
		sess.mu.Unlock()
		if err != nil {
			httpError(w, http.StatusBadRequest, "No database loaded")
			return
		}

		w.Header().Set(sessionHeader, sess.id)
		writeJSON(w, http.StatusOK, recordsResponse[T]{
			Data:        res.Records,
			BrowserType: string(res.Family),
			Status:      string(res.Status),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}
