package analysis

import "context"

// AnalysisRequest es el payload mínimo que el motor CDSS necesita
// para evaluar los hallazgos de un examen de imagen.
type AnalysisRequest struct {
	AthleteName string
	AthleteAge  int
	Sport       string

	ExamType string // cardiac, musculoskeletal, neurological
	BodyPart string
	Findings string
}

type Alert struct {
	Severity          string // low, medium, high
	Finding           string
	Recommendation    string
	ReturnToPlayWeeks int
}

type RiskScore struct {
	Score    float64
	Category string // low, moderate, high
	CanPlay  bool
}

type AnalysisResult struct {
	Alerts []Alert
	Risk   RiskScore
}

// Analyzer es el colaborador externo de análisis clínico.
// El motor real corre como servicio HTTP aparte; acá solo se modela el contrato.
type Analyzer interface {
	AnalyzeExam(ctx context.Context, in AnalysisRequest) (AnalysisResult, error)
}
