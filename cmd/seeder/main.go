package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Config
const (
	API_URL     = "http://localhost:8080/api/v1/ingest/sets"
	ADMIN_TOKEN = "seed-secret-123"
	BATCH_SIZE  = 200
)

// Set matches models.RawMatchRecord (simplified)
type Set struct {
	SetID       string         `json:"set_id"`
	Tournament  string         `json:"tournament"`
	CompetitorA string         `json:"competitor_a"`
	CompetitorB string         `json:"competitor_b"`
	WinnerID    string         `json:"winner_id"`
	CharacterA  string         `json:"character_a,omitempty"`
	CharacterB  string         `json:"character_b,omitempty"`
	UsageA      map[string]int `json:"usage_a,omitempty"`
	ScoreA      int            `json:"score_a"`
	ScoreB      int            `json:"score_b"`
	PlayedAt    time.Time      `json:"played_at"`
}

// Roster with a rough strength so the generated table is not flat.
var roster = map[string]float64{
	"Fox":              1.30,
	"Meta Knight":      1.20,
	"Pikachu":          1.15,
	"Sheik":            1.10,
	"Falco":            1.05,
	"Mario":            1.00,
	"Mr. Game & Watch": 0.95,
	"Link":             0.90,
	"Kirby":            0.80,
	"King K. Rool":     0.75,
}

// Spellings seen in real exports; the server canonicalizes them.
var spellings = map[string][]string{
	"Fox":              {"fox", "FOX"},
	"Meta Knight":      {"metaknight", "meta knight"},
	"Mr. Game & Watch": {"gamewatch", "mr game and watch"},
	"King K. Rool":     {"kingkr", "k rool"},
	"Mario":            {"mario"},
}

func main() {
	total := 1000
	if v, err := strconv.Atoi(os.Getenv("SEED_SETS")); err == nil && v > 0 {
		total = v
	}
	url := API_URL
	if v := os.Getenv("SEED_URL"); v != "" {
		url = v
	}
	token := ADMIN_TOKEN
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		token = v
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	names := make([]string, 0, len(roster))
	for n := range roster {
		names = append(names, n)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	accepted := 0
	for sent := 0; sent < total; sent += BATCH_SIZE {
		n := BATCH_SIZE
		if total-sent < n {
			n = total - sent
		}

		// API expects one JSON object per line, or a JSON array
		var body bytes.Buffer
		enc := json.NewEncoder(&body)
		for i := 0; i < n; i++ {
			if err := enc.Encode(randomSet(rng, names)); err != nil {
				log.Fatalf("Failed to marshal JSON: %v", err)
			}
		}

		req, err := http.NewRequest("POST", url, &body)
		if err != nil {
			log.Fatalf("Failed to create request: %v", err)
		}
		req.Header.Set("Content-Type", "application/x-ndjson")
		req.Header.Set("X-Admin-Token", token)

		resp, err := client.Do(req)
		if err != nil {
			log.Fatalf("Failed to send request: %v", err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			log.Fatalf("Batch at %d rejected: %s: %s", sent, resp.Status, respBody)
		}
		var out struct {
			Processed int `json:"processed"`
			Dropped   int `json:"dropped"`
		}
		if err := json.Unmarshal(respBody, &out); err == nil {
			accepted += out.Processed
			if out.Dropped > 0 {
				log.Printf("Queue full: %d sets dropped", out.Dropped)
			}
		}
	}

	fmt.Printf("Seeded %d/%d sets into %s\n", accepted, total, url)
	fmt.Println("Run POST /api/v1/matchups/rebuild to refresh the table.")
}

func randomSet(rng *rand.Rand, names []string) Set {
	charA := names[rng.Intn(len(names))]
	charB := names[rng.Intn(len(names))]
	pA := fmt.Sprintf("player-%03d", rng.Intn(500))
	pB := fmt.Sprintf("player-%03d", 500+rng.Intn(500))

	s := Set{
		SetID:       uuid.NewString(),
		Tournament:  fmt.Sprintf("weekly-%d", rng.Intn(40)),
		CompetitorA: pA,
		CompetitorB: pB,
		CharacterA:  spell(rng, charA),
		CharacterB:  spell(rng, charB),
		PlayedAt:    time.Now().Add(-time.Duration(rng.Intn(90*24)) * time.Hour).UTC(),
	}
	// Some exports only carry a usage map
	if rng.Intn(10) == 0 {
		s.CharacterA = ""
		s.UsageA = map[string]int{"ultimate/" + charA: 5 + rng.Intn(10), "ultimate/random": 2}
	}

	pWinA := roster[charA] / (roster[charA] + roster[charB])
	if rng.Float64() < pWinA {
		s.WinnerID = pA
		s.ScoreA, s.ScoreB = 3, rng.Intn(3)
	} else {
		s.WinnerID = pB
		s.ScoreA, s.ScoreB = rng.Intn(3), 3
	}
	return s
}

func spell(rng *rand.Rand, name string) string {
	alts := spellings[name]
	if len(alts) == 0 || rng.Intn(3) > 0 {
		return name
	}
	return alts[rng.Intn(len(alts))]
}
