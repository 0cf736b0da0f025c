package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is applied on every start.  Statements only create what is
// missing; existing seats, bookings and reviews are never touched.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS seats (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		seat_number   VARCHAR(10)     NOT NULL,
		status        ENUM('available','booked') NOT NULL DEFAULT 'available',
		claimant_id   VARCHAR(64)     NULL,
		claimant_name VARCHAR(120)    NULL,
		booked_at     DATETIME(6)     NULL,
		created_at    DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (id),
		UNIQUE KEY uq_seats_seat_number (seat_number),
		CONSTRAINT chk_seats_claimant CHECK ((status = 'booked') = (claimant_id IS NOT NULL))
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		seat_id        BIGINT UNSIGNED NOT NULL,
		claimant_id    VARCHAR(64)     NOT NULL,
		claimant_name  VARCHAR(120)    NULL,
		average_score  DOUBLE          NOT NULL,
		raw_score      DOUBLE          NOT NULL,
		overall_rating VARCHAR(16)     NOT NULL,
		created_at     DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (id),
		KEY idx_reviews_seat (seat_id),
		CONSTRAINT fk_reviews_seat FOREIGN KEY (seat_id) REFERENCES seats (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS review_aspects (
		review_id BIGINT UNSIGNED NOT NULL,
		aspect    VARCHAR(32)     NOT NULL,
		body      TEXT            NOT NULL,
		score     DOUBLE          NOT NULL,
		sentiment VARCHAR(16)     NOT NULL,
		PRIMARY KEY (review_id, aspect),
		KEY idx_review_aspects_aspect (aspect),
		CONSTRAINT fk_review_aspects_review FOREIGN KEY (review_id) REFERENCES reviews (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Bootstrap creates missing tables and makes sure the seed inventory
// exists.  Seed seats that are already present, booked or not, are left as
// they are.
func Bootstrap(ctx context.Context, db *sql.DB, seedCount, perRow int) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	labels := SeedLabels(seedCount, perRow)
	if len(labels) == 0 {
		return nil
	}
	query := `INSERT IGNORE INTO seats (seat_number) VALUES ` +
		strings.TrimSuffix(strings.Repeat("(?),", len(labels)), ",")
	args := make([]any, 0, len(labels))
	for _, l := range labels {
		args = append(args, l)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed seats: %w", err)
	}
	return nil
}

// SeedLabels returns count seat numbers laid out perRow to a row: A1..A10,
// B1..B10 and so on, with rows after Z continuing AA, AB.
func SeedLabels(count, perRow int) []string {
	if count <= 0 {
		return nil
	}
	if perRow <= 0 {
		perRow = count
	}
	labels := make([]string, 0, count)
	for i := 0; i < count; i++ {
		labels = append(labels, fmt.Sprintf("%s%d", indexToRowLabel(i/perRow), i%perRow+1))
	}
	return labels
}

// indexToRowLabel converts a zero-based index to an alphabetical row label like A, B, AA
func indexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
