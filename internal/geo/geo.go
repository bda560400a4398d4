// Package geo looks up the visitor's country so a new conversation can be
// tagged with it. The lookup is best effort: failures degrade to an empty
// CountryInfo and never block starting a chat.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
)

// DefaultEndpoint is the public IP geolocation service queried.
const DefaultEndpoint = "https://ipwho.is/"

// Lookup resolves the caller's country by IP.
type Lookup struct {
	endpoint string
	http     *http.Client
	log      *logging.Logger
}

// New creates a lookup client. Empty endpoint uses DefaultEndpoint; a nil
// httpClient gets a short timeout so a slow service cannot stall chat
// creation.
func New(endpoint string, httpClient *http.Client, log *logging.Logger) *Lookup {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Lookup{endpoint: endpoint, http: httpClient, log: log.Sub("geo")}
}

type lookupResponse struct {
	Success     bool   `json:"success"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Flag        struct {
		Img string `json:"img"`
	} `json:"flag"`
}

// Country returns the caller's country info. Any failure returns a zero
// CountryInfo and the error for logging; callers proceed regardless.
func (l *Lookup) Country(ctx context.Context) (domain.CountryInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return domain.CountryInfo{}, err
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return domain.CountryInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.CountryInfo{}, fmt.Errorf("geo: unexpected status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.CountryInfo{}, fmt.Errorf("geo: decoding response: %w", err)
	}
	if !body.Success {
		return domain.CountryInfo{}, fmt.Errorf("geo: lookup unsuccessful")
	}

	return domain.CountryInfo{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Flag:        body.Flag.Img,
	}, nil
}
