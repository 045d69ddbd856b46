// OMDb API [MovieService] implementation
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/shared"
	"golang.org/x/time/rate"
)

const defaultOMDbBaseURL string = "https://www.omdbapi.com/"

// ErrMovieNotFound is returned when OMDb reports no match for a search or ID.
var ErrMovieNotFound = errors.New("movie not found")

// omdbEnvelope holds the fields OMDb includes in every response.
type omdbEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error,omitempty"`
}

type omdbSearchResponse struct {
	omdbEnvelope
	Search       []models.SearchResult `json:"Search"`
	TotalResults string                `json:"totalResults"`
}

type omdbMovieResponse struct {
	omdbEnvelope
	models.MovieDetail
}

// OMDbOpts configures an [OMDbService].
type OMDbOpts struct {
	APIKey            string
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64 // zero disables throttling
	Logger            *log.Logger
}

// OMDbService implements [MovieService] for the OMDb API.
type OMDbService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewOMDbService creates a new OMDb service instance.
func NewOMDbService(opts OMDbOpts) *OMDbService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOMDbBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NopLogger()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &OMDbService{
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		logger:     shared.WithLogger(opts.Logger, "service", "omdb"),
	}
}

// Name returns the service name.
func (o *OMDbService) Name() string {
	return "OMDb"
}

// Search finds titles matching query.
//
// Calls GET ?apikey=<key>&s=<query>. The query is sent untrimmed; only an empty string is rejected.
func (o *OMDbService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", shared.ErrMissingArgument)
	}

	var resp omdbSearchResponse
	if err := o.doRequest(ctx, url.Values{"s": {query}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(query); err != nil {
		return nil, err
	}

	o.logger.Debug("search complete", "query", query, "results", len(resp.Search), "total", resp.TotalResults)
	return resp.Search, nil
}

// Movie retrieves the full record for a title.
//
// Calls GET ?apikey=<key>&i=<id>.
func (o *OMDbService) Movie(ctx context.Context, id string) (*models.MovieDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: movie ID is empty", shared.ErrMissingArgument)
	}

	var resp omdbMovieResponse
	if err := o.doRequest(ctx, url.Values{"i": {id}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(id); err != nil {
		return nil, err
	}

	detail := resp.MovieDetail
	return &detail, nil
}

func (e omdbEnvelope) check(subject string) error {
	if strings.EqualFold(e.Response, "False") {
		if e.Error != "" {
			return fmt.Errorf("%w: %s (%s)", ErrMovieNotFound, subject, e.Error)
		}
		return fmt.Errorf("%w: %s", ErrMovieNotFound, subject)
	}
	return nil
}

func (o *OMDbService) doRequest(ctx context.Context, params url.Values, result any) error {
	if o.apiKey == "" {
		return fmt.Errorf("%w: OMDb API key not set (config omdb.api_key or %s)", shared.ErrMissingCredentials, shared.APIKeyEnv)
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	endpoint, err := url.Parse(o.baseURL)
	if err != nil {
		return fmt.Errorf("%w: invalid base URL: %v", shared.ErrAPIRequest, err)
	}
	q := endpoint.Query()
	q.Set("apikey", o.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("%w: OMDb returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}

	return nil
}
