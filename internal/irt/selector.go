package irt

import "github.com/dte-pulse/Recruitment-Module-Backend/internal/models"

// Difficulty window half-width around theta applied after a response.
const windowMargin = 0.5

// SelectNext returns the unadministered item with the highest Fisher
// information at the current theta, or nil when the pool is exhausted —
// the caller must treat nil as an exam-ending condition distinct from
// reaching the SE target.
//
// Before scoring, the pool is narrowed by recent performance: after a
// correct answer only items with b > θ-0.5 are considered, after an
// incorrect one only b < θ+0.5 — unless the restriction would empty the
// pool, in which case it is dropped. No window applies before the first
// response. Ties go to the lowest item id (the bank is id-sorted).
func (e *Engine) SelectNext() *models.CATItem {
	answered := make(map[int64]bool, len(e.administered))
	for _, id := range e.administered {
		answered[id] = true
	}

	pool := make([]models.CATItem, 0, len(e.items))
	for _, item := range e.items {
		if !answered[item.ID] {
			pool = append(pool, item)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	if len(e.responses) > 0 {
		last := e.responses[len(e.responses)-1]
		windowed := make([]models.CATItem, 0, len(pool))
		for _, item := range pool {
			if last.IsCorrect {
				if item.B > e.theta-windowMargin {
					windowed = append(windowed, item)
				}
			} else {
				if item.B < e.theta+windowMargin {
					windowed = append(windowed, item)
				}
			}
		}
		if len(windowed) > 0 {
			pool = windowed
		}
	}

	best := -1
	maxInfo := -1.0
	for i, item := range pool {
		info := ItemInformation(e.theta, item.A, item.B, item.C)
		if info > maxInfo {
			maxInfo = info
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	selected := pool[best]
	return &selected
}
