package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// seedItem mirrors the item_bank.json shape: options as an array, the
// correct answer as an index into it.
type seedItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
	A        *float64 `json:"a,omitempty"`
	B        *float64 `json:"b,omitempty"`
	C        *float64 `json:"c,omitempty"`
}

var indexToLetter = []string{"A", "B", "C", "D"}

// SeedItems loads the item bank JSON file into cat_items if the table is
// empty. A missing file is not an error; the bank can be managed entirely
// through the API.
func SeedItems(db *sql.DB, path string) error {
	var existing int
	if err := db.QueryRow(`SELECT COUNT(*) FROM cat_items`).Scan(&existing); err != nil {
		return fmt.Errorf("count items: %w", err)
	}
	if existing > 0 {
		log.Printf("[seed] cat_items already has %d items, skipping", existing)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[seed] %s not found, skipping item seed", path)
			return nil
		}
		return fmt.Errorf("read item bank: %w", err)
	}

	var items []seedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse item bank: %w", err)
	}

	inserted := 0
	for _, item := range items {
		options := item.Options
		for len(options) < 4 {
			options = append(options, "")
		}
		if item.Correct < 0 || item.Correct > 3 {
			log.Printf("WARN: [seed] skipping item with correct index %d: %.40s", item.Correct, item.Question)
			continue
		}

		a, b, c := 1.0, 0.0, 0.25
		if item.A != nil {
			a = *item.A
		}
		if item.B != nil {
			b = *item.B
		}
		if item.C != nil {
			c = *item.C
		}

		_, err := db.Exec(
			`INSERT INTO cat_items (question, option_a, option_b, option_c, option_d, correct, a, b, c)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.Question, options[0], options[1], options[2], options[3],
			indexToLetter[item.Correct], a, b, c,
		)
		if err != nil {
			return fmt.Errorf("insert seed item: %w", err)
		}
		inserted++
	}

	log.Printf("[seed] inserted %d CAT items", inserted)
	return nil
}
