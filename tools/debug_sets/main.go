package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/smashlab/matchup-api/internal/logic"
)

// Lists raw character spellings stored in tournament_sets with the name
// they canonicalize to, most used first. Useful when extending the alias
// table.
func main() {
	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		chURL = "clickhouse://localhost:9000/matchup_stats"
	}

	opts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		log.Fatalf("Failed to parse DSN: %v", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open connection: %v", err)
	}
	defer conn.Close()

	aliases, err := logic.LoadAliasFile(os.Getenv("ALIAS_FILE"))
	if err != nil {
		log.Fatalf("Failed to load aliases: %v", err)
	}
	canon := logic.NewCanonicalizer(aliases, nil)

	ctx := context.Background()
	rows, err := conn.Query(ctx, `
		SELECT name, count() AS sets
		FROM (
			SELECT character_a AS name FROM matchup_stats.tournament_sets FINAL
			UNION ALL
			SELECT character_b AS name FROM matchup_stats.tournament_sets FINAL
		)
		GROUP BY name
		ORDER BY sets DESC, name
	`)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			name string
			sets uint64
		)
		if err := rows.Scan(&name, &sets); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		found = true
		resolved := canon.Canonicalize(name)
		marker := ""
		if resolved != name {
			marker = " *"
		}
		fmt.Printf("%8d  %-24q -> %q%s\n", sets, name, resolved, marker)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Rows failed: %v", err)
	}
	if !found {
		fmt.Println("NO ROWS FOUND")
	}
}
