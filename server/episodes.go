package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"podcast_studio/episode"
	"podcast_studio/storage"
)

const similarLimit = 4

type episodeListResp struct {
	Episodes []episode.Episode `json:"episodes"`
}

type episodeDetailResp struct {
	Episode         *episode.Episode  `json:"episode"`
	DescriptionHTML string            `json:"description_html"`
	Similar         []episode.Episode `json:"similar"`
}

func (s *Server) handleEpisodeList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeStatusError(w, http.StatusBadRequest, "BadRequest", "limit must be a positive number.")
			return
		}
		limit = n
	}
	list, err := s.episodes.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list episodes", "error", err)
		writeError(w, err)
		return
	}
	if list == nil {
		list = []episode.Episode{}
	}
	writeJSON(w, http.StatusOK, episodeListResp{Episodes: list})
}

// handleEpisodeGet counts a view, then returns the episode with its
// rendered description and episodes sharing its voice.
func (s *Server) handleEpisodeGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()
	if _, err := s.episodes.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, episode.ErrNotFound) {
			writeStatusError(w, http.StatusNotFound, "NotFound", "Episode not found.")
			return
		}
		s.logger.Error("increment views", "episode_id", id, "error", err)
		writeError(w, err)
		return
	}
	e, err := s.episodes.Get(ctx, id)
	if err != nil {
		s.logger.Error("get episode", "episode_id", id, "error", err)
		writeError(w, err)
		return
	}
	html, err := episode.RenderDescription(e.Description)
	if err != nil {
		s.logger.Warn("render description", "episode_id", id, "error", err)
	}
	similar, err := s.episodes.SimilarByVoice(ctx, id, similarLimit)
	if err != nil {
		s.logger.Warn("similar episodes", "episode_id", id, "error", err)
	}
	if similar == nil {
		similar = []episode.Episode{}
	}
	writeJSON(w, http.StatusOK, episodeDetailResp{Episode: e, DescriptionHTML: html, Similar: similar})
}

// handleBlob streams a locally stored asset. Range requests are honoured
// so audio players can seek.
func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		http.NotFound(w, r)
		return
	}
	obj, err := s.blobs.Open(r.Context(), storage.Handle(r.PathValue("handle")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("open blob", "handle", r.PathValue("handle"), "error", err)
		http.Error(w, "failed to load object", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", obj.MIMEType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, obj.Name, obj.CreatedAt, bytes.NewReader(obj.Data))
}
