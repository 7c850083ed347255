package models

import "time"

// ── Core CAT Entities ──────────────────────────────────

// CATItem is a calibrated test question with 3PL item-response parameters.
type CATItem struct {
	ID           int64     `json:"id"`
	Question     string    `json:"question"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	OptionC      string    `json:"option_c"`
	OptionD      string    `json:"option_d"`
	Correct      string    `json:"correct"` // A, B, C, or D
	A            float64   `json:"a"`       // Discrimination
	B            float64   `json:"b"`       // Difficulty
	C            float64   `json:"c"`       // Guessing
	UsedCount    int       `json:"used_count"`
	CorrectCount int       `json:"correct_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// CATSession is one candidate's exam attempt. It stays on record after
// completion as calibration input.
type CATSession struct {
	ID                   int64      `json:"id"`
	ApplicationID        int64      `json:"application_id"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CurrentTheta         float64    `json:"current_theta"`
	CurrentSE            *float64   `json:"current_se,omitempty"`
	NumItemsAdministered int        `json:"num_items_administered"`
	IsActive             bool       `json:"is_active"`
	FinalTheta           *float64   `json:"final_theta,omitempty"`
	FinalSE              *float64   `json:"final_se,omitempty"`
	FinalPercentile      *float64   `json:"final_percentile,omitempty"`
	NumCorrect           *int       `json:"num_correct,omitempty"`
	Accuracy             *float64   `json:"accuracy,omitempty"`
}

// CATItemResponse records one answered item within a session.
// Immutable once written; there is at most one per (session, item) pair.
type CATItemResponse struct {
	ID                  int64     `json:"id"`
	SessionID           int64     `json:"session_id"`
	ItemID              int64     `json:"item_id"`
	SelectedOption      string    `json:"selected_option"`
	IsCorrect           bool      `json:"is_correct"`
	ResponseTimeSeconds int       `json:"response_time_seconds"`
	ThetaBefore         float64   `json:"theta_before"`
	ThetaAfter          float64   `json:"theta_after"`
	SEAfter             float64   `json:"se_after"`
	CreatedAt           time.Time `json:"created_at"`
}

// Application is a candidate's application record, carried here only as far
// as the exam flow needs it (identity, exam key, stage, final CAT scores).
type Application struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	JobTitle      string    `json:"job_title"`
	ExamKey       string    `json:"-"`
	CurrentStage  string    `json:"current_stage"`
	CATCompleted  bool      `json:"cat_completed"`
	CATTheta      *float64  `json:"cat_theta,omitempty"`
	CATPercentile *float64  `json:"cat_percentile,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const StageAptitude = "aptitude"

// ── Exam Flow Requests ─────────────────────────────────

type ExamStartRequest struct {
	Email   string `json:"email"`
	ExamKey string `json:"exam_key"`
}

type NextItemRequest struct {
	SessionID int64 `json:"session_id"`
}

type SubmitAnswerRequest struct {
	SessionID           int64  `json:"session_id"`
	ItemID              int64  `json:"item_id"`
	SelectedOption      string `json:"selected_option"`
	ResponseTimeSeconds int    `json:"response_time_seconds"`
}

type CompleteExamRequest struct {
	SessionID int64 `json:"session_id"`
}

// ── Exam Flow Responses ────────────────────────────────

type ExamStartResponse struct {
	SessionID      int64   `json:"session_id"`
	ApplicationID  int64   `json:"application_id"`
	CandidateName  string  `json:"candidate_name"`
	JobTitle       string  `json:"job_title"`
	CurrentTheta   float64 `json:"current_theta"`
	ItemsCompleted int     `json:"items_completed"`
	ItemsRemaining int     `json:"items_remaining"`
}

// NextItemResponse carries a served item with the answer key stripped.
type NextItemResponse struct {
	ItemID         int64  `json:"item_id"`
	Question       string `json:"question"`
	OptionA        string `json:"option_a"`
	OptionB        string `json:"option_b"`
	OptionC        string `json:"option_c"`
	OptionD        string `json:"option_d"`
	ItemNumber     int    `json:"item_number"`
	ShouldContinue bool   `json:"should_continue"`
}

type SubmitAnswerResponse struct {
	IsCorrect      bool    `json:"is_correct"`
	CurrentTheta   float64 `json:"current_theta"`
	CurrentSE      float64 `json:"current_se"`
	ItemsCompleted int     `json:"items_completed"`
	ShouldContinue bool    `json:"should_continue"`
	BankExhausted  bool    `json:"bank_exhausted,omitempty"`
}

type ExamResults struct {
	SessionID    int64      `json:"session_id"`
	Theta        float64    `json:"theta"`
	SE           *float64   `json:"se"` // nil when no information was accumulated
	Percentile   float64    `json:"percentile"`
	NumItems     int        `json:"num_items"`
	NumCorrect   int        `json:"num_correct"`
	Accuracy     float64    `json:"accuracy"`
	AbilityLevel string     `json:"ability_level"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type SessionStatusResponse struct {
	SessionID            int64      `json:"session_id"`
	IsActive             bool       `json:"is_active"`
	CurrentTheta         float64    `json:"current_theta"`
	CurrentSE            *float64   `json:"current_se,omitempty"`
	NumItemsAdministered int        `json:"num_items_administered"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// ── Item Management ────────────────────────────────────

type CreateItemRequest struct {
	Question string   `json:"question"`
	OptionA  string   `json:"option_a"`
	OptionB  string   `json:"option_b"`
	OptionC  string   `json:"option_c"`
	OptionD  string   `json:"option_d"`
	Correct  string   `json:"correct"`
	A        *float64 `json:"a,omitempty"`
	B        *float64 `json:"b,omitempty"`
	C        *float64 `json:"c,omitempty"`
}

type GenerateItemsRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"` // easy, medium, hard
	Count      int    `json:"count"`
}

type GenerateItemsResponse struct {
	Created int       `json:"created"`
	Items   []CATItem `json:"items"`
	Model   string    `json:"model"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
