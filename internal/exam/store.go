package exam

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/irt"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Applications ────────────────────────────────────────

func (s *Store) GetApplicationByCredentials(email, examKey string) (*models.Application, error) {
	var app models.Application
	err := s.db.QueryRow(
		`SELECT id, email, full_name, job_title, exam_key, current_stage,
		        cat_completed, cat_theta, cat_percentile, created_at
		 FROM applications WHERE email = $1 AND exam_key = $2`,
		email, examKey,
	).Scan(&app.ID, &app.Email, &app.FullName, &app.JobTitle, &app.ExamKey,
		&app.CurrentStage, &app.CATCompleted, &app.CATTheta, &app.CATPercentile, &app.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ── Sessions ────────────────────────────────────────────

const sessionColumns = `id, application_id, started_at, completed_at, current_theta,
	current_se, num_items_administered, is_active,
	final_theta, final_se, final_percentile, num_correct, accuracy`

func scanSession(row *sql.Row) (*models.CATSession, error) {
	var session models.CATSession
	err := row.Scan(&session.ID, &session.ApplicationID, &session.StartedAt, &session.CompletedAt,
		&session.CurrentTheta, &session.CurrentSE, &session.NumItemsAdministered, &session.IsActive,
		&session.FinalTheta, &session.FinalSE, &session.FinalPercentile, &session.NumCorrect, &session.Accuracy)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveSession returns the application's active session, or
// sql.ErrNoRows when there is none. At most one active session exists per
// application; the exam flow resumes it instead of creating another.
func (s *Store) GetActiveSession(applicationID int64) (*models.CATSession, error) {
	row := s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM cat_sessions WHERE application_id = $1 AND is_active = TRUE
		 ORDER BY started_at DESC LIMIT 1`, sessionColumns),
		applicationID,
	)
	return scanSession(row)
}

func (s *Store) CreateSession(applicationID int64, initialTheta float64) (*models.CATSession, error) {
	row := s.db.QueryRow(
		fmt.Sprintf(`INSERT INTO cat_sessions (application_id, current_theta)
		 VALUES ($1, $2) RETURNING %s`, sessionColumns),
		applicationID, initialTheta,
	)
	session, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *Store) GetSession(sessionID int64) (*models.CATSession, error) {
	row := s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM cat_sessions WHERE id = $1`, sessionColumns),
		sessionID,
	)
	return scanSession(row)
}

// ── Items ───────────────────────────────────────────────

const itemColumns = `id, question, option_a, option_b, option_c, option_d,
	correct, a, b, c, used_count, correct_count, created_at`

func scanItems(rows *sql.Rows) ([]models.CATItem, error) {
	defer rows.Close()
	var items []models.CATItem
	for rows.Next() {
		var item models.CATItem
		if err := rows.Scan(&item.ID, &item.Question, &item.OptionA, &item.OptionB,
			&item.OptionC, &item.OptionD, &item.Correct, &item.A, &item.B, &item.C,
			&item.UsedCount, &item.CorrectCount, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) ListItems() ([]models.CATItem, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM cat_items ORDER BY id`, itemColumns),
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return scanItems(rows)
}

func (s *Store) GetItem(itemID int64) (*models.CATItem, error) {
	var item models.CATItem
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM cat_items WHERE id = $1`, itemColumns),
		itemID,
	).Scan(&item.ID, &item.Question, &item.OptionA, &item.OptionB,
		&item.OptionC, &item.OptionD, &item.Correct, &item.A, &item.B, &item.C,
		&item.UsedCount, &item.CorrectCount, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateItem(item models.CATItem) (*models.CATItem, error) {
	err := s.db.QueryRow(
		`INSERT INTO cat_items (question, option_a, option_b, option_c, option_d, correct, a, b, c)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, used_count, correct_count, created_at`,
		item.Question, item.OptionA, item.OptionB, item.OptionC, item.OptionD,
		item.Correct, item.A, item.B, item.C,
	).Scan(&item.ID, &item.UsedCount, &item.CorrectCount, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &item, nil
}

func (s *Store) UpdateItem(item models.CATItem) error {
	result, err := s.db.Exec(
		`UPDATE cat_items SET question = $1, option_a = $2, option_b = $3, option_c = $4,
		        option_d = $5, correct = $6, a = $7, b = $8, c = $9
		 WHERE id = $10`,
		item.Question, item.OptionA, item.OptionB, item.OptionC, item.OptionD,
		item.Correct, item.A, item.B, item.C, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteItem(itemID int64) error {
	result, err := s.db.Exec(`DELETE FROM cat_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ── Responses ───────────────────────────────────────────

func (s *Store) ListSessionResponses(sessionID int64) ([]models.CATItemResponse, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, item_id, selected_option, is_correct,
		        response_time_seconds, theta_before, theta_after, COALESCE(se_after, 'Infinity'::float8), created_at
		 FROM cat_item_responses WHERE session_id = $1 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []models.CATItemResponse
	for rows.Next() {
		var r models.CATItemResponse
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ItemID, &r.SelectedOption, &r.IsCorrect,
			&r.ResponseTimeSeconds, &r.ThetaBefore, &r.ThetaAfter, &r.SEAfter, &r.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

// RecordResponse persists one answer atomically: the immutable response
// row, the session's running state, and the item usage counters move in a
// single transaction. The unique (session_id, item_id) constraint backs
// up the engine's duplicate check.
func (s *Store) RecordResponse(session *models.CATSession, response models.CATItemResponse, theta, se float64, numItems int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO cat_item_responses (session_id, item_id, selected_option, is_correct,
		        response_time_seconds, theta_before, theta_after, se_after)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, response.ItemID, response.SelectedOption, response.IsCorrect,
		response.ResponseTimeSeconds, response.ThetaBefore, response.ThetaAfter,
		finiteOrNull(response.SEAfter),
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE cat_sessions SET current_theta = $1, current_se = $2, num_items_administered = $3
		 WHERE id = $4`,
		theta, finiteOrNull(se), numItems, session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if response.IsCorrect {
		_, err = tx.Exec(
			`UPDATE cat_items SET used_count = used_count + 1, correct_count = correct_count + 1 WHERE id = $1`,
			response.ItemID,
		)
	} else {
		_, err = tx.Exec(
			`UPDATE cat_items SET used_count = used_count + 1 WHERE id = $1`,
			response.ItemID,
		)
	}
	if err != nil {
		return fmt.Errorf("update item counters: %w", err)
	}

	return tx.Commit()
}

// CompleteSession closes the session with its final results and stamps
// the application, in one transaction.
func (s *Store) CompleteSession(session *models.CATSession, results *irt.FinalResults) (time.Time, error) {
	completedAt := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return completedAt, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE cat_sessions
		 SET is_active = FALSE, completed_at = $1, final_theta = $2, final_se = $3,
		     final_percentile = $4, num_correct = $5, accuracy = $6,
		     current_theta = $2, current_se = $3
		 WHERE id = $7`,
		completedAt, results.Theta, finiteOrNull(results.SE),
		results.Percentile, results.NumCorrect, results.Accuracy, session.ID,
	)
	if err != nil {
		return completedAt, fmt.Errorf("finalize session: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE applications SET cat_completed = TRUE, cat_theta = $1, cat_percentile = $2 WHERE id = $3`,
		results.Theta, results.Percentile, session.ApplicationID,
	)
	if err != nil {
		return completedAt, fmt.Errorf("stamp application: %w", err)
	}

	return completedAt, tx.Commit()
}

// ── Calibration ─────────────────────────────────────────

// PooledCompletedResponses returns every completed session's responses
// keyed session id → item id → correctness, the calibrator's input shape.
func (s *Store) PooledCompletedResponses() (map[int64]map[int64]bool, error) {
	rows, err := s.db.Query(
		`SELECT r.session_id, r.item_id, r.is_correct
		 FROM cat_item_responses r
		 JOIN cat_sessions s ON s.id = r.session_id
		 WHERE s.is_active = FALSE`,
	)
	if err != nil {
		return nil, fmt.Errorf("pool responses: %w", err)
	}
	defer rows.Close()

	pooled := make(map[int64]map[int64]bool)
	for rows.Next() {
		var sessionID, itemID int64
		var isCorrect bool
		if err := rows.Scan(&sessionID, &itemID, &isCorrect); err != nil {
			return nil, err
		}
		if pooled[sessionID] == nil {
			pooled[sessionID] = make(map[int64]bool)
		}
		pooled[sessionID][itemID] = isCorrect
	}
	return pooled, rows.Err()
}

// ApplyCalibration commits a batch of re-estimated parameters in one
// transaction, so concurrent readers observe either the old or the new
// bank, never a partial mix.
func (s *Store) ApplyCalibration(updates []models.CATItem) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE cat_items SET a = $1, b = $2, c = $3 WHERE id = $4`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, item := range updates {
		if _, err := stmt.Exec(item.A, item.B, item.C, item.ID); err != nil {
			return fmt.Errorf("update item %d: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// finiteOrNull maps the engine's +Inf standard error (no information yet)
// to SQL NULL.
func finiteOrNull(value float64) interface{} {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return nil
	}
	return value
}
