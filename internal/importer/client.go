// Package importer periodically pulls candidate contacts from an external
// source and inserts previously-unseen ones as leads, de-duplicated on the
// email natural key.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Contact is one candidate from the external source.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ContactSource fetches a batch of candidate contacts.
type ContactSource interface {
	Fetch(ctx context.Context) ([]Contact, error)
}

// RandomUserClient fetches candidates from the RandomUser API.
type RandomUserClient struct {
	httpClient *http.Client
	baseURL    string
	batchSize  int
	log        *logger.Logger
}

// randomUserResponse mirrors the subset of the RandomUser payload we consume.
type randomUserResponse struct {
	Results []struct {
		Name struct {
			First string `json:"first"`
			Last  string `json:"last"`
		} `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"results"`
}

// NewRandomUserClient creates a contact source with an explicit HTTP timeout.
func NewRandomUserClient(cfg config.ImportConfig, log *logger.Logger) *RandomUserClient {
	return &RandomUserClient{
		httpClient: &http.Client{Timeout: cfg.GetImportTimeout()},
		baseURL:    cfg.GetImportSourceURL(),
		batchSize:  cfg.GetImportBatchSize(),
		log:        log.WithComponent("randomuser-client"),
	}
}

// Fetch retrieves one batch of candidate contacts.
func (c *RandomUserClient) Fetch(ctx context.Context) ([]Contact, error) {
	params := url.Values{}
	params.Set("results", strconv.Itoa(c.batchSize))
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching contacts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contact source returned status %d", resp.StatusCode)
	}

	var payload randomUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding contact response: %w", err)
	}

	contacts := make([]Contact, 0, len(payload.Results))
	for _, result := range payload.Results {
		contacts = append(contacts, Contact{
			FirstName: result.Name.First,
			LastName:  result.Name.Last,
			Email:     result.Email,
			Phone:     result.Phone,
		})
	}

	c.log.Debug("contacts fetched", "count", len(contacts), "latency_ms", time.Since(start).Milliseconds())
	return contacts, nil
}
