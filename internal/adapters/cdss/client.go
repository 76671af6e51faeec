package cdss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"athlete-clinical-history/internal/platform/httpclient"
	"athlete-clinical-history/internal/ports/analysis"
)

var (
	ErrNotConfigured = errors.New("cdss client not configured")
	ErrUpstream      = errors.New("cdss upstream error")
)

// Config del cliente CDSS. BaseURL/APIKey normalmente vienen de env.
type Config struct {
	BaseURL string
	APIKey  string

	// Header donde viaja la API key; default X-Api-Key.
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

// Wire del servicio de análisis (FastAPI externo).

type analyzeRequest struct {
	Athlete analyzeAthlete `json:"athlete"`
	Imaging analyzeImaging `json:"imaging"`
}

type analyzeAthlete struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Sport string `json:"sport"`
}

type analyzeImaging struct {
	Type     string `json:"type"`
	BodyPart string `json:"body_part,omitempty"`
	Findings string `json:"findings"`
}

type analyzeResponse struct {
	Alerts []struct {
		Severity          string `json:"severity"`
		Finding           string `json:"finding"`
		Recommendation    string `json:"recommendation"`
		ReturnToPlayWeeks int    `json:"return_to_play_weeks"`
	} `json:"alerts"`
	RiskScore struct {
		Score    float64 `json:"score"`
		Category string  `json:"category"`
		CanPlay  bool    `json:"can_play"`
	} `json:"risk_score"`
}

// AnalyzeExam implementa analysis.Analyzer contra el motor HTTP externo.
func (c *Client) AnalyzeExam(ctx context.Context, in analysis.AnalysisRequest) (analysis.AnalysisResult, error) {
	if !c.IsConfigured() {
		return analysis.AnalysisResult{}, ErrNotConfigured
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	req := analyzeRequest{
		Athlete: analyzeAthlete{
			Name:  in.AthleteName,
			Age:   in.AthleteAge,
			Sport: in.Sport,
		},
		Imaging: analyzeImaging{
			Type:     in.ExamType,
			BodyPart: in.BodyPart,
			Findings: in.Findings,
		},
	}

	var resp analyzeResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, "/v1/analyze", headers, req, &resp); err != nil {
		return analysis.AnalysisResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out := analysis.AnalysisResult{
		Alerts: make([]analysis.Alert, 0, len(resp.Alerts)),
		Risk: analysis.RiskScore{
			Score:    resp.RiskScore.Score,
			Category: resp.RiskScore.Category,
			CanPlay:  resp.RiskScore.CanPlay,
		},
	}
	for _, a := range resp.Alerts {
		out.Alerts = append(out.Alerts, analysis.Alert{
			Severity:          a.Severity,
			Finding:           a.Finding,
			Recommendation:    a.Recommendation,
			ReturnToPlayWeeks: a.ReturnToPlayWeeks,
		})
	}
	return out, nil
}
