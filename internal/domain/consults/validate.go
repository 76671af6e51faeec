package consults

import (
	"fmt"
	"strings"
)

const (
	// Expiración por defecto y tope (7 días), en horas.
	defaultExpiryHours = 48
	maxExpiryHours     = 168
)

func validateAthleteID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid athlete id", ErrInvalidInput)
	}
	return nil
}

func validatePermissions(p Permissions) error {
	if p.Empty() {
		return fmt.Errorf("%w: at least one permission (caseIds, examIds, or labIds) must be provided", ErrInvalidInput)
	}

	for field, ids := range map[string][]int64{
		"caseIds": p.CaseIDs,
		"examIds": p.ExamIDs,
		"labIds":  p.LabIDs,
	} {
		for _, id := range ids {
			if id <= 0 {
				return fmt.Errorf("%w: all %s must be positive integers", ErrInvalidInput, field)
			}
		}
	}

	return nil
}

// dedupIDs elimina repetidos preservando el orden. Sin esto el
// count-check de ownership contaría doble un mismo ID.
func dedupIDs(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizePermissions(p Permissions) Permissions {
	p.CaseIDs = dedupIDs(p.CaseIDs)
	p.ExamIDs = dedupIDs(p.ExamIDs)
	p.LabIDs = dedupIDs(p.LabIDs)
	return p
}

// validateExpiryHours resuelve el default cuando viene nil y
// valida el rango (0, 168] cuando viene seteado.
func validateExpiryHours(hours *float64) (float64, error) {
	if hours == nil {
		return defaultExpiryHours, nil
	}
	if *hours <= 0 || *hours > maxExpiryHours {
		return 0, fmt.Errorf("%w: expiry hours must be between 1 and 168 (7 days)", ErrInvalidInput)
	}
	return *hours, nil
}

// validateToken corta tokens sintácticamente imposibles antes de
// cualquier lookup.
func validateToken(token string) error {
	if len(strings.TrimSpace(token)) < minTokenLen {
		return fmt.Errorf("%w: invalid token format", ErrInvalidInput)
	}
	return nil
}
