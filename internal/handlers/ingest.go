package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

var errNoCharacter = errors.New("no character and no usage counts")

// IngestSets handles POST /api/v1/ingest/sets
// @Summary Ingest Tournament Sets
// @Description Accepts newline-separated JSON (or URL-encoded) set records, or one JSON array
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body []models.RawMatchRecord true "Sets"
// @Success 202 {object} models.IngestResponse "Accepted"
// @Failure 413 {object} map[string]string "Payload Too Large"
// @Router /ingest/sets [post]
func (h *Handler) IngestSets(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	defer r.Body.Close()

	items, err := splitPayload(body)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON array")
		return
	}

	resp := models.IngestResponse{Status: "accepted"}
	for i, item := range items {
		set, err := parseSet(item)
		if err != nil {
			h.logger.Warnw("Rejected set", "error", err, "item", i)
			resp.Rejected++
			continue
		}

		if !h.pool.Enqueue(set) {
			resp.Dropped = len(items) - i
			h.logger.Warnw("Worker pool queue full, dropping remaining sets in batch", "dropped", resp.Dropped)
			break
		}
		resp.Processed++
	}

	h.logger.Debugw("Ingested sets", "processed", resp.Processed, "rejected", resp.Rejected, "dropped", resp.Dropped)
	h.jsonResponse(w, http.StatusAccepted, resp)
}

// splitPayload returns one item per set: the elements of a JSON array body,
// or the non-blank lines of any other body.
func splitPayload(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, err
		}
		items := make([]string, 0, len(raw))
		for _, m := range raw {
			items = append(items, string(m))
		}
		return items, nil
	}

	var items []string
	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items, nil
}

// parseSet decodes, validates and completes one set. A side without a
// character name takes its primary character from the usage counts.
func parseSet(item string) (*models.RawMatchRecord, error) {
	var set models.RawMatchRecord
	if strings.HasPrefix(item, "{") {
		if err := json.Unmarshal([]byte(item), &set); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	} else {
		values, err := url.ParseQuery(item)
		if err != nil {
			return nil, fmt.Errorf("decode form: %w", err)
		}
		if set, err = parseFormToSet(values); err != nil {
			return nil, err
		}
	}

	set.CompetitorA = strings.TrimSpace(set.CompetitorA)
	set.CompetitorB = strings.TrimSpace(set.CompetitorB)
	set.WinnerID = strings.TrimSpace(set.WinnerID)
	if err := ValidateStruct(&set); err != nil {
		return nil, err
	}
	if set.WinnerID != set.CompetitorA && set.WinnerID != set.CompetitorB {
		return nil, fmt.Errorf("winner %q is neither competitor", set.WinnerID)
	}

	for _, side := range []struct {
		name  *string
		usage map[string]int
	}{
		{&set.CharacterA, set.UsageA},
		{&set.CharacterB, set.UsageB},
	} {
		if strings.TrimSpace(*side.name) != "" {
			continue
		}
		primary, ok := logic.PrimaryCharacter(side.usage)
		if !ok {
			return nil, errNoCharacter
		}
		*side.name = primary
	}
	return &set, nil
}

type formParser struct {
	err error
}

func (p *formParser) parseInt(s string) int {
	if p.err != nil || s == "" {
		return 0
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("invalid int %q: %w", s, err)
		return 0
	}
	return i
}

func (p *formParser) parseTime(s string) time.Time {
	if p.err != nil || s == "" {
		return time.Time{}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		p.err = fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t
}

// parseFormToSet converts URL-encoded form data to a RawMatchRecord
func parseFormToSet(form url.Values) (models.RawMatchRecord, error) {
	p := &formParser{}
	set := models.RawMatchRecord{
		SetID:       form.Get("set_id"),
		Tournament:  form.Get("tournament"),
		CompetitorA: form.Get("competitor_a"),
		CompetitorB: form.Get("competitor_b"),
		WinnerID:    form.Get("winner_id"),
		CharacterA:  form.Get("character_a"),
		CharacterB:  form.Get("character_b"),
		ScoreA:      p.parseInt(form.Get("score_a")),
		ScoreB:      p.parseInt(form.Get("score_b")),
		PlayedAt:    p.parseTime(form.Get("played_at")),
	}
	return set, p.err
}
