package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/doc-sentinel/internal/analyzer"
	"github.com/raaihank/doc-sentinel/internal/extract"
	"github.com/raaihank/doc-sentinel/internal/privacy"
	"github.com/raaihank/doc-sentinel/internal/store"
	"github.com/raaihank/doc-sentinel/internal/websocket"
)

type sanitizeRequest struct {
	Text  string `json:"text"`
	Level string `json:"level,omitempty"`
}

type sanitizeResponse struct {
	RedactedText   string                   `json:"redacted_text"`
	Level          privacy.Level            `json:"level"`
	OriginalLength int                      `json:"original_length"`
	RedactedLength int                      `json:"redacted_length"`
	Removed        map[privacy.Category]int `json:"removed_counts"`
	TotalRemoved   int                      `json:"total_removed"`
	Report         string                   `json:"privacy_report"`
}

type analyzeRequest struct {
	Text  string `json:"text"`
	Level string `json:"level,omitempty"`
}

type analysisResponse struct {
	StorageKey   string            `json:"storage_key,omitempty"`
	Analysis     *analyzer.Result  `json:"analysis"`
	Sanitization privacy.Metadata  `json:"sanitization_metadata"`
	Report       string            `json:"privacy_report"`
	Document     *extract.Metadata `json:"document,omitempty"`
	Cached       bool              `json:"cached"`
}

type sessionResponse struct {
	SessionID  string             `json:"session_id"`
	StorageKey string             `json:"storage_key,omitempty"`
	Documents  []analysisResponse `json:"documents"`
	Failed     []string           `json:"failed,omitempty"`
}

type sweepRequest struct {
	RetentionDays int `json:"retention_days,omitempty"`
}

// handleHealth returns service health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "docsentinel",
		"timestamp": time.Now().UTC(),
	})
}

// handleInfo returns service configuration and storage statistics.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"service":               "DocSentinel",
		"analyzer":              s.analyzer.Name(),
		"model":                 s.config.Analyzer.Model,
		"default_privacy_level": s.config.Privacy.DefaultLevel,
		"privacy_levels":        []privacy.Level{privacy.LevelNone, privacy.LevelLow, privacy.LevelMedium, privacy.LevelHigh},
		"supported_formats":     []extract.Format{extract.FormatPDF, extract.FormatDocx, extract.FormatPptx},
		"storage":               s.artifacts.Stats(),
		"websocket_clients":     s.wsHub.ClientCount(),
	}
	if s.cache != nil {
		info["cache"] = s.cache.GetStats()
	}
	writeJSON(w, http.StatusOK, info)
}

// handleSanitize redacts raw text at the requested privacy level without
// running analysis. The response carries the redacted text, per-category
// counts and the human-readable privacy report.
func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req sanitizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.config.Server.MaxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := s.sanitizer.SanitizeLevel(req.Text, s.levelOrDefault(req.Level))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcastSanitization(getRequestID(r.Context()), outcome)

	writeJSON(w, http.StatusOK, sanitizeResponse{
		RedactedText:   outcome.RedactedText,
		Level:          outcome.Level,
		OriginalLength: outcome.OriginalLength,
		RedactedLength: outcome.RedactedLength,
		Removed:        outcome.Removed,
		TotalRemoved:   outcome.TotalRemoved(),
		Report:         privacy.Report(outcome),
	})
}

// handleAnalyzeDocument runs the full pipeline for one document: extract
// (for uploads), sanitize, analyze, persist. Accepts either a multipart
// upload with a "file" part or a JSON body with raw text.
func (s *Server) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	logger := s.logger.WithRequestID(requestID)

	var (
		text       string
		level      string
		sourceName string
		docMeta    *extract.Metadata
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(s.config.Server.MaxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file upload")
			return
		}
		defer file.Close()

		doc, err := s.extractUpload(file, header.Filename)
		if err != nil {
			var unsupported *extract.ErrUnsupportedFormat
			if errors.As(err, &unsupported) {
				writeError(w, http.StatusUnsupportedMediaType, err.Error())
				return
			}
			logger.Error("Text extraction failed", zap.Error(err))
			writeError(w, http.StatusUnprocessableEntity, "failed to extract text from document")
			return
		}
		text = doc.Text
		docMeta = &doc.Metadata
		level = r.FormValue("level")
		sourceName = header.Filename
	} else {
		var req analyzeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, s.config.Server.MaxUploadBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		text = req.Text
		level = req.Level
		sourceName = "raw_text"
	}

	resp, status, err := s.analyzeText(r.Context(), requestID, text, level, sourceName, docMeta)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAnalyzeSession runs the pipeline over a multipart batch of
// documents ("files" parts) and persists them as one session. Individual
// extraction failures skip the document; analysis failures abort the
// session.
func (s *Server) handleAnalyzeSession(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	logger := s.logger.WithRequestID(requestID)

	if err := r.ParseMultipartForm(s.config.Server.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	level := r.FormValue("level")

	session := &store.Session{SessionID: uuid.New().String()}
	resp := sessionResponse{SessionID: session.SessionID}

	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			resp.Failed = append(resp.Failed, header.Filename)
			continue
		}
		doc, err := s.extractUpload(file, header.Filename)
		file.Close()
		if err != nil {
			logger.Warn("Skipping document in session",
				zap.String("format", filepath.Ext(header.Filename)),
				zap.Error(err),
			)
			resp.Failed = append(resp.Failed, header.Filename)
			continue
		}

		docResp, status, err := s.analyzeText(r.Context(), requestID, doc.Text, level, header.Filename, &doc.Metadata)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}
		resp.Documents = append(resp.Documents, *docResp)
		session.Analyses = append(session.Analyses, store.Artifact{
			ID:               docResp.StorageKey,
			Timestamp:        time.Now().UTC(),
			WordCount:        docResp.Analysis.WordCount,
			Summary:          docResp.Analysis.Summary,
			ExecutiveSummary: docResp.Analysis.ExecutiveSummary,
			KeyThemes:        docResp.Analysis.KeyThemes,
			SlideHeadlines:   docResp.Analysis.SlideHeadlines,
			Sentiment:        docResp.Analysis.Sentiment,
			Sanitization:     docResp.Sanitization,
		})
	}

	if len(resp.Documents) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no documents could be processed")
		return
	}

	if s.config.Storage.AutoSave {
		key, err := s.artifacts.PutSession(session)
		if err != nil {
			logger.Warn("Session persistence failed, returning results without storage key", zap.Error(err))
		} else {
			resp.StorageKey = key
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHistory lists stored artifacts and sessions, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": s.artifacts.List(),
		"stats":   s.artifacts.Stats(),
	})
}

// handleGetSession returns one stored session by ID.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	session, err := s.artifacts.LoadSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleSweep removes artifacts older than the retention window. The
// request body may override the configured retention_days.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	days := s.config.Storage.RetentionDays
	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RetentionDays > 0 {
		days = req.RetentionDays
	}
	if days <= 0 {
		writeError(w, http.StatusBadRequest, "retention_days must be positive")
		return
	}

	removed, err := s.artifacts.Sweep(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"removed":        removed,
		"retention_days": days,
	})
}

// analyzeText is the shared sanitize -> cache -> analyze -> persist path.
// Persistence failures are non-fatal: the response simply carries no
// storage key.
func (s *Server) analyzeText(ctx context.Context, requestID, text, level, sourceName string, docMeta *extract.Metadata) (*analysisResponse, int, error) {
	logger := s.logger.WithRequestID(requestID)

	outcome, err := s.sanitizer.SanitizeLevel(text, s.levelOrDefault(level))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	s.broadcastSanitization(requestID, outcome)

	var (
		result   *analyzer.Result
		cached   bool
		cacheKey string
	)
	if s.cache != nil {
		cacheKey = s.cache.Key(outcome.RedactedText, string(outcome.Level), s.analyzer.Name())
		result, cached = s.cache.Get(ctx, cacheKey)
	}

	if result == nil {
		analysisCtx, cancel := context.WithTimeout(ctx, s.config.Analyzer.Timeout)
		defer cancel()

		result, err = s.analyzer.Analyze(analysisCtx, outcome.RedactedText)
		if err != nil {
			logger.Error("Analysis failed", zap.String("backend", s.analyzer.Name()), zap.Error(err))
			return nil, http.StatusBadGateway, err
		}
		if s.cache != nil {
			if cacheErr := s.cache.Set(ctx, cacheKey, result); cacheErr != nil {
				logger.Warn("Failed to cache analysis result", zap.Error(cacheErr))
			}
		}
	}

	resp := &analysisResponse{
		Analysis:     result,
		Sanitization: outcome.Meta(),
		Report:       privacy.Report(outcome),
		Document:     docMeta,
		Cached:       cached,
	}

	if s.config.Storage.AutoSave {
		artifact := &store.Artifact{
			WordCount:        result.WordCount,
			Summary:          result.Summary,
			ExecutiveSummary: result.ExecutiveSummary,
			KeyThemes:        result.KeyThemes,
			SlideHeadlines:   result.SlideHeadlines,
			Sentiment:        result.Sentiment,
			Sanitization:     outcome.Meta(),
		}
		key, err := s.artifacts.Put(artifact, sourceName)
		if err != nil {
			logger.Warn("Artifact persistence failed, returning results without storage key", zap.Error(err))
		} else {
			resp.StorageKey = key
		}
	}

	return resp, http.StatusOK, nil
}

// extractUpload writes the upload to a temporary file and extracts its
// text. The temporary file is removed before returning; nothing raw stays
// on disk.
func (s *Server) extractUpload(file io.Reader, filename string) (*extract.Document, error) {
	if _, err := extract.FormatFromPath(filename); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "docsentinel-*"+filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	return s.extractor.ExtractFile(tmp.Name())
}

func (s *Server) levelOrDefault(level string) string {
	if level == "" {
		return s.config.Privacy.DefaultLevel
	}
	return level
}

func (s *Server) broadcastSanitization(requestID string, outcome privacy.Outcome) {
	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeSanitization,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.SanitizationEvent{
			RequestID:      requestID,
			Level:          outcome.Level,
			Removed:        outcome.Removed,
			TotalRemoved:   outcome.TotalRemoved(),
			OriginalLength: outcome.OriginalLength,
			RedactedLength: outcome.RedactedLength,
		},
	})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
