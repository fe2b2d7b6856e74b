package ai

import (
	"context"
	"time"
)

// AIReportResponse represents the structure of AI-generated reports
type AIReportResponse struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    interface{} `json:"raw_data"`
	AIInsights string      `json:"ai_insights,omitempty"`
	Summary    string      `json:"summary"`
	Error      string      `json:"error,omitempty"`
}

// CartDemandRow is one carted item with the catalog details known for it.
type CartDemandRow struct {
	ItemID   string  `json:"itemId"`
	Title    string  `json:"title,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Carts    int     `json:"carts"`
	Positive int     `json:"positiveReviews"`
	Negative int     `json:"negativeReviews"`
}

// GenerateCartDemandReport always returns the raw rows; insights are added
// when the AI service is enabled and answers.
func (c *Client) GenerateCartDemandReport(ctx context.Context, rows []CartDemandRow) *AIReportResponse {
	response := &AIReportResponse{
		Status:      "success",
		GeneratedAt: time.Now().UTC(),
		AIEnabled:   c.IsEnabled(),
		Data: ReportData{
			RawData: rows,
			Summary: "Raw cart demand data (AI insights unavailable)",
		},
	}
	if !c.IsEnabled() {
		return response
	}
	if len(rows) == 0 {
		response.Data.Summary = "No carted items to analyse"
		return response
	}

	insights, err := c.generateCompletion(ctx, CartDemandSystemPrompt, formatCartDemandPrompt(rows))
	if err != nil {
		response.Data.Error = "AI analysis failed"
		return response
	}
	response.Data.AIInsights = insights
	response.Data.Summary = "AI-generated cart demand insights"
	return response
}
