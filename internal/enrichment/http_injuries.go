package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

const maxInjuryResponseBytes = 64 << 10

// injuryReport is the JSON body returned by the injury feed
type injuryReport struct {
	Status string  `json:"status"`
	Injury *string `json:"injury"`
	News   *string `json:"news"`
	Source string  `json:"source"`
}

// HTTPInjuryProvider queries an injury-report service over HTTP
type HTTPInjuryProvider struct {
	client  *HTTPClient
	baseURL string
	apiKey  string
}

// NewHTTPInjuryProvider creates a provider calling {baseURL}/injuries
func NewHTTPInjuryProvider(client *HTTPClient, baseURL, apiKey string) *HTTPInjuryProvider {
	return &HTTPInjuryProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Injuries implements InjuryProvider. Any transport or decoding error is
// returned so the Enricher can fall back.
func (p *HTTPInjuryProvider) Injuries(ctx context.Context, leg models.ExtractedLeg) (InjurySignal, error) {
	q := url.Values{}
	if leg.Player != "" {
		q.Set("player", leg.Player)
	}
	if leg.Team != "" {
		q.Set("team", leg.Team)
	}
	if len(q) == 0 {
		q.Set("q", leg.Selection)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/injuries?"+q.Encode(), nil)
	if err != nil {
		return InjurySignal{}, fmt.Errorf("build injury request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return InjurySignal{}, fmt.Errorf("injury request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return InjurySignal{}, fmt.Errorf("injury feed returned status %d", resp.StatusCode)
	}

	var report injuryReport
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxInjuryResponseBytes)).Decode(&report); err != nil {
		return InjurySignal{}, fmt.Errorf("decode injury report: %w", err)
	}

	source := report.Source
	if source == "" {
		source = "injury feed"
	}
	signal := InjurySignal{
		Injury: blankToNil(report.Injury),
		News:   blankToNil(report.News),
		Mode:   models.SourceModeLive,
	}
	switch {
	case signal.Injury != nil:
		signal.Notes = []string{fmt.Sprintf("Injuries live (%s): %s.", source, *signal.Injury)}
	case report.Status != "":
		signal.Notes = []string{fmt.Sprintf("Injuries live (%s): status %s.", source, report.Status)}
	default:
		signal.Notes = []string{fmt.Sprintf("Injuries live (%s): nothing reported.", source)}
	}
	if signal.News != nil {
		signal.Notes = append(signal.Notes, fmt.Sprintf("News (%s): %s.", source, *signal.News))
	}
	return signal, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
