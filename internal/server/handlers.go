package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
	"github.com/lewisedginton/genai_gateway/pkg/prefixed_uuid"
)

const askIDPrefix = "ask"

var errTrailingData = errors.New("unexpected data after JSON body")

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	ID      prefixed_uuid.PrefixedUUID `json:"id"`
	Text    string                     `json:"text"`
	Enabled bool                       `json:"enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), s.log)

	var req askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.Security.MaxRequestSize))
	err := dec.Decode(&req)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = extra
			if err == nil {
				err = errTrailingData
			}
		}
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		log.Debug("Rejected malformed ask request", logger.ErrorField(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	enabled := s.gw.Enabled()
	text, err := s.gw.Ask(r.Context(), req.Prompt)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		ID:      prefixed_uuid.New(askIDPrefix),
		Text:    text,
		Enabled: enabled,
	})
}

func (s *Server) flagsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.flags.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
