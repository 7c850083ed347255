package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/generator"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/irt"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or exam key")
	ErrAlreadyCompleted   = errors.New("exam already completed")
	ErrWrongStage         = errors.New("application is not at the aptitude stage")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEmptyBank          = errors.New("no items available")
	ErrExamFinished       = errors.New("exam has reached its stopping condition")
	ErrBankExhausted      = errors.New("item bank exhausted")
)

// Service orchestrates the exam flow: it loads durable state, rebuilds an
// engine per call from the persisted response history, and writes back
// whatever the engine produced. Engines are never kept alive between
// requests.
type Service struct {
	store      *Store
	generator  *generator.Generator
	calibrator *irt.Calibrator
	policy     irt.Policy
	bounds     irt.Bounds
}

func NewService(store *Store, gen *generator.Generator, calibrator *irt.Calibrator) *Service {
	return &Service{
		store:      store,
		generator:  gen,
		calibrator: calibrator,
		policy:     irt.DefaultPolicy(),
		bounds:     irt.DefaultBounds(),
	}
}

// ── Exam Flow ───────────────────────────────────────────

// StartExam validates the candidate's credentials and resumes the active
// session if one exists; a new session is only created when none is
// active.
func (s *Service) StartExam(req models.ExamStartRequest) (*models.ExamStartResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	app, err := s.store.GetApplicationByCredentials(email, strings.TrimSpace(req.ExamKey))
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup application: %w", err)
	}

	if app.CATCompleted {
		return nil, ErrAlreadyCompleted
	}
	if app.CurrentStage != models.StageAptitude {
		return nil, ErrWrongStage
	}

	session, err := s.store.GetActiveSession(app.ID)
	if err == sql.ErrNoRows {
		session, err = s.store.CreateSession(app.ID, s.policy.InitialTheta)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	remaining := s.policy.MaxItems - session.NumItemsAdministered
	if remaining < 0 {
		remaining = 0
	}

	return &models.ExamStartResponse{
		SessionID:      session.ID,
		ApplicationID:  app.ID,
		CandidateName:  app.FullName,
		JobTitle:       app.JobTitle,
		CurrentTheta:   session.CurrentTheta,
		ItemsCompleted: session.NumItemsAdministered,
		ItemsRemaining: remaining,
	}, nil
}

// NextItem selects the next maximum-information item for the session.
func (s *Service) NextItem(sessionID int64) (*models.NextItemResponse, error) {
	engine, session, err := s.rebuildEngine(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, irt.ErrSessionNotActive
	}

	if !engine.ShouldContinue() {
		return nil, ErrExamFinished
	}

	next := engine.SelectNext()
	if next == nil {
		return nil, ErrBankExhausted
	}

	return &models.NextItemResponse{
		ItemID:         next.ID,
		Question:       next.Question,
		OptionA:        next.OptionA,
		OptionB:        next.OptionB,
		OptionC:        next.OptionC,
		OptionD:        next.OptionD,
		ItemNumber:     engine.NumAdministered() + 1,
		ShouldContinue: true,
	}, nil
}

// SubmitAnswer scores one answer through the engine and persists the
// outcome atomically. A bank that runs dry before the stopping rules are
// satisfied is reported as bank_exhausted, forcing completion.
func (s *Service) SubmitAnswer(req models.SubmitAnswerRequest) (*models.SubmitAnswerResponse, error) {
	engine, session, err := s.rebuildEngine(req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, irt.ErrSessionNotActive
	}
	if engine.NumAdministered() >= s.policy.MaxItems {
		return nil, ErrExamFinished
	}

	result, err := engine.ProcessResponse(req.ItemID, req.SelectedOption)
	if err != nil {
		return nil, err
	}

	responses := engine.Responses()
	record := responses[len(responses)-1]
	record.SessionID = session.ID
	record.ResponseTimeSeconds = req.ResponseTimeSeconds

	if err := s.store.RecordResponse(session, record, result.Theta, result.SE, result.NumItems); err != nil {
		return nil, fmt.Errorf("persist response: %w", err)
	}

	shouldContinue := engine.ShouldContinue()
	bankExhausted := false
	if shouldContinue && engine.SelectNext() == nil {
		bankExhausted = true
		shouldContinue = false
	}

	return &models.SubmitAnswerResponse{
		IsCorrect:      result.IsCorrect,
		CurrentTheta:   result.Theta,
		CurrentSE:      result.SE,
		ItemsCompleted: result.NumItems,
		ShouldContinue: shouldContinue,
		BankExhausted:  bankExhausted,
	}, nil
}

// CompleteExam finalizes the session and stamps the application, then
// kicks a best-effort recalibration pass over the now-larger pool.
func (s *Service) CompleteExam(sessionID int64) (*models.ExamResults, error) {
	engine, session, err := s.rebuildEngine(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, irt.ErrSessionNotActive
	}

	results, err := engine.Complete()
	if err != nil {
		return nil, err
	}

	completedAt, err := s.store.CompleteSession(session, results)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	// Recalibration is best-effort: failures are logged and never
	// surface to the candidate's response.
	if report, err := s.Recalibrate(); err != nil {
		log.Printf("WARN: [exam] post-completion recalibration failed: %v", err)
	} else if !report.Skipped {
		log.Printf("[exam] recalibrated item bank: method=%s updated=%d", report.Method, report.Updated)
	}

	response := &models.ExamResults{
		SessionID:    session.ID,
		Theta:        results.Theta,
		Percentile:   results.Percentile,
		NumItems:     results.NumItems,
		NumCorrect:   results.NumCorrect,
		Accuracy:     results.Accuracy,
		AbilityLevel: results.AbilityLevel,
		CompletedAt:  &completedAt,
	}
	if !math.IsInf(results.SE, 0) {
		se := results.SE
		response.SE = &se
	}
	return response, nil
}

func (s *Service) SessionStatus(sessionID int64) (*models.SessionStatusResponse, error) {
	session, err := s.store.GetSession(sessionID)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &models.SessionStatusResponse{
		SessionID:            session.ID,
		IsActive:             session.IsActive,
		CurrentTheta:         session.CurrentTheta,
		CurrentSE:            session.CurrentSE,
		NumItemsAdministered: session.NumItemsAdministered,
		StartedAt:            session.StartedAt,
		CompletedAt:          session.CompletedAt,
	}, nil
}

// rebuildEngine loads the bank and the session's persisted responses and
// rehydrates a fresh engine. The durable response list is the single
// source of truth for session state.
func (s *Service) rebuildEngine(sessionID int64) (*irt.Engine, *models.CATSession, error) {
	session, err := s.store.GetSession(sessionID)
	if err == sql.ErrNoRows {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	items, err := s.store.ListItems()
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, ErrEmptyBank
	}

	responses, err := s.store.ListSessionResponses(sessionID)
	if err != nil {
		return nil, nil, err
	}

	engine := irt.NewEngine(items, s.policy, s.bounds)
	if err := engine.Rehydrate(responses); err != nil {
		return nil, nil, err
	}
	return engine, session, nil
}

// ── Item Management ─────────────────────────────────────

func (s *Service) ListItems() ([]models.CATItem, error) {
	return s.store.ListItems()
}

func (s *Service) GetItem(itemID int64) (*models.CATItem, error) {
	item, err := s.store.GetItem(itemID)
	if err == sql.ErrNoRows {
		return nil, irt.ErrUnknownItem
	}
	return item, err
}

// CreateItem validates parameter ranges before the item enters the bank.
// Out-of-range parameters are rejected, never clamped.
func (s *Service) CreateItem(req models.CreateItemRequest) (*models.CATItem, error) {
	item := models.CATItem{
		Question: strings.TrimSpace(req.Question),
		OptionA:  req.OptionA,
		OptionB:  req.OptionB,
		OptionC:  req.OptionC,
		OptionD:  req.OptionD,
		Correct:  strings.ToUpper(strings.TrimSpace(req.Correct)),
		A:        1.0,
		B:        0.0,
		C:        0.25,
	}
	if req.A != nil {
		item.A = *req.A
	}
	if req.B != nil {
		item.B = *req.B
	}
	if req.C != nil {
		item.C = *req.C
	}

	if err := irt.ValidateItem(item, s.bounds); err != nil {
		return nil, err
	}
	return s.store.CreateItem(item)
}

func (s *Service) UpdateItem(itemID int64, req models.CreateItemRequest) (*models.CATItem, error) {
	existing, err := s.store.GetItem(itemID)
	if err == sql.ErrNoRows {
		return nil, irt.ErrUnknownItem
	}
	if err != nil {
		return nil, err
	}

	existing.Question = strings.TrimSpace(req.Question)
	existing.OptionA = req.OptionA
	existing.OptionB = req.OptionB
	existing.OptionC = req.OptionC
	existing.OptionD = req.OptionD
	existing.Correct = strings.ToUpper(strings.TrimSpace(req.Correct))
	if req.A != nil {
		existing.A = *req.A
	}
	if req.B != nil {
		existing.B = *req.B
	}
	if req.C != nil {
		existing.C = *req.C
	}

	if err := irt.ValidateItem(*existing, s.bounds); err != nil {
		return nil, err
	}
	if err := s.store.UpdateItem(*existing); err != nil {
		if err == sql.ErrNoRows {
			return nil, irt.ErrUnknownItem
		}
		return nil, err
	}
	return existing, nil
}

func (s *Service) DeleteItem(itemID int64) error {
	err := s.store.DeleteItem(itemID)
	if err == sql.ErrNoRows {
		return irt.ErrUnknownItem
	}
	return err
}

// ── Calibration ─────────────────────────────────────────

// Recalibrate pools all completed sessions and re-estimates the bank,
// committing any parameter updates as one atomic batch.
func (s *Service) Recalibrate() (*irt.CalibrationReport, error) {
	items, err := s.store.ListItems()
	if err != nil {
		return nil, err
	}

	pooled, err := s.store.PooledCompletedResponses()
	if err != nil {
		return nil, err
	}

	updates, report, err := s.calibrator.Calibrate(items, pooled)
	if err != nil {
		return nil, err
	}

	if err := s.store.ApplyCalibration(updates); err != nil {
		return nil, fmt.Errorf("commit calibration: %w", err)
	}
	return report, nil
}

// ── Item Generation ─────────────────────────────────────

// GenerateItems drafts new aptitude items with the configured LLM and
// inserts the ones that pass structural and range validation.
func (s *Service) GenerateItems(ctx context.Context, req models.GenerateItemsRequest) (*models.GenerateItemsResponse, error) {
	drafts, err := s.generator.GenerateAptitudeBatch(ctx, req.Topic, req.Difficulty, req.Count)
	if err != nil {
		return nil, fmt.Errorf("generate items: %w", err)
	}

	created := make([]models.CATItem, 0, len(drafts))
	for _, draft := range drafts {
		item := models.CATItem{
			Question: draft.Question,
			OptionA:  draft.OptionA,
			OptionB:  draft.OptionB,
			OptionC:  draft.OptionC,
			OptionD:  draft.OptionD,
			Correct:  draft.Correct,
			A:        1.0,
			B:        generator.DefaultDifficulty(req.Difficulty),
			C:        0.25,
		}
		if err := irt.ValidateItem(item, s.bounds); err != nil {
			log.Printf("WARN: [exam] generated item rejected: %v", err)
			continue
		}
		inserted, err := s.store.CreateItem(item)
		if err != nil {
			log.Printf("WARN: [exam] failed to store generated item: %v", err)
			continue
		}
		created = append(created, *inserted)
	}

	return &models.GenerateItemsResponse{
		Created: len(created),
		Items:   created,
		Model:   s.generator.ModelName(),
	}, nil
}
