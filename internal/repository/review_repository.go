package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/iliyamo/seat-booking/internal/model"
)

// ReviewRepo provides append-only access to reviews and their aspect rows.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the provided database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and all of its aspect scores in one transaction.
// On success rv.ID and rv.CreatedAt are populated.  There is no update or
// delete counterpart.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (seat_id, claimant_id, claimant_name, average_score, raw_score, overall_rating, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rv.SeatID, rv.ClaimantID, nullable(rv.ClaimantName), rv.AverageScore, rv.RawScore, rv.OverallRating, rv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	if len(rv.Aspects) > 0 {
		query := `INSERT INTO review_aspects (review_id, aspect, body, score, sentiment) VALUES `
		args := make([]any, 0, len(rv.Aspects)*5)
		for i, a := range rv.Aspects {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, id, string(a.Aspect), a.Text, a.Score, a.Sentiment)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert review aspects: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	rv.ID = uint64(id)
	return nil
}

const reviewColumns = `id, seat_id, claimant_id, claimant_name, average_score, raw_score, overall_rating, created_at`

// List returns the newest reviews first, at most limit of them (all when
// limit <= 0).
func (r *ReviewRepo) List(ctx context.Context, limit int) ([]model.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, q, args...)
}

// ListBySeat returns every review for one seat, newest first.
func (r *ReviewRepo) ListBySeat(ctx context.Context, seatID uint64) ([]model.Review, error) {
	return r.query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE seat_id = ? ORDER BY id DESC`, seatID)
}

func (r *ReviewRepo) query(ctx context.Context, q string, args ...any) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	reviews := make([]model.Review, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var (
			rv   model.Review
			name sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.SeatID, &rv.ClaimantID, &name, &rv.AverageScore, &rv.RawScore, &rv.OverallRating, &rv.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		rv.ClaimantName = name.String
		rv.Aspects = []model.AspectScore{}
		index[rv.ID] = len(reviews)
		reviews = append(reviews, rv)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return reviews, nil
	}

	ids := make([]any, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.ID)
	}
	arows, err := r.db.QueryContext(ctx,
		`SELECT review_id, aspect, body, score, sentiment FROM review_aspects
		 WHERE review_id IN (`+placeholders(len(ids))+`)`, ids...)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var (
			reviewID uint64
			aspect   string
			a        model.AspectScore
		)
		if err := arows.Scan(&reviewID, &aspect, &a.Text, &a.Score, &a.Sentiment); err != nil {
			return nil, err
		}
		a.Aspect = model.Aspect(aspect)
		if i, ok := index[reviewID]; ok {
			reviews[i].Aspects = append(reviews[i].Aspects, a)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}
	for i := range reviews {
		sortAspects(reviews[i].Aspects)
	}
	return reviews, nil
}

// Analytics aggregates every stored review.  All queries run in one
// read-only repeatable-read transaction so the figures describe a single
// snapshot of the table.  Reviews are classified on raw_score, the value
// overall_rating was derived from.
func (r *ReviewRepo) Analytics(ctx context.Context) (*model.Analytics, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out := &model.Analytics{Ratings: map[string]int{}, Aspects: []model.AspectStats{}}
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(average_score), 0),
		        COALESCE(SUM(raw_score > 0.1), 0), COALESCE(SUM(raw_score < -0.1), 0)
		 FROM reviews`,
	).Scan(&out.TotalReviews, &out.AverageScore, &out.Positive, &out.Negative)
	if err != nil {
		return nil, fmt.Errorf("review totals: %w", err)
	}
	out.Neutral = out.TotalReviews - out.Positive - out.Negative

	rows, err := tx.QueryContext(ctx, `SELECT overall_rating, COUNT(*) FROM reviews GROUP BY overall_rating`)
	if err != nil {
		return nil, fmt.Errorf("rating counts: %w", err)
	}
	for rows.Next() {
		var (
			rating string
			n      int
		)
		if err := rows.Scan(&rating, &n); err != nil {
			rows.Close()
			return nil, err
		}
		out.Ratings[rating] = n
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx,
		`SELECT aspect, COUNT(*), AVG(score),
		        SUM(sentiment = 'positive'), SUM(sentiment = 'negative'), SUM(sentiment = 'neutral')
		 FROM review_aspects GROUP BY aspect`)
	if err != nil {
		return nil, fmt.Errorf("aspect stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			st     model.AspectStats
			aspect string
		)
		if err := rows.Scan(&aspect, &st.Count, &st.AverageScore, &st.Positive, &st.Negative, &st.Neutral); err != nil {
			return nil, err
		}
		st.Aspect = model.Aspect(aspect)
		out.Aspects = append(out.Aspects, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortAspectStats(out.Aspects)
	return out, nil
}

// sortAspects orders scores by the canonical aspect order.
func sortAspects(as []model.AspectScore) {
	pos := aspectPositions()
	slices.SortStableFunc(as, func(a, b model.AspectScore) int { return pos[a.Aspect] - pos[b.Aspect] })
}

func sortAspectStats(st []model.AspectStats) {
	pos := aspectPositions()
	slices.SortStableFunc(st, func(a, b model.AspectStats) int { return pos[a.Aspect] - pos[b.Aspect] })
}

func aspectPositions() map[model.Aspect]int {
	pos := make(map[model.Aspect]int, len(model.Aspects))
	for i, a := range model.Aspects {
		pos[a] = i
	}
	return pos
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
