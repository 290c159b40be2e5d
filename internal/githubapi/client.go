package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURLConstant                       = "https://api.github.com"
	defaultPageSizeConstant                      = 100
	defaultRequestTimeoutConstant                = 10 * time.Second
	organizationRepositoriesPathTemplateConstant = "%s/orgs/%s/repos"
	perPageQueryParameterNameConstant            = "per_page"
	pageQueryParameterNameConstant               = "page"
	acceptHeaderNameConstant                     = "Accept"
	acceptHeaderValueConstant                    = "application/vnd.github+json"
	authorizationHeaderNameConstant              = "Authorization"
	bearerTokenTemplateConstant                  = "Bearer %s"
	loggerRequiredMessageConstant                = "github api client logger not configured"
	organizationRequiredMessageConstant          = "organization name required"
	pageHandlerRequiredMessageConstant           = "page handler required"
	requestCreationErrorTemplateConstant         = "building repository listing request: %w"
	requestExecutionErrorTemplateConstant        = "requesting repository listing page %d: %w"
	responseDecodingErrorTemplateConstant        = "decoding repository listing page %d: %w"
	recordDecodingErrorTemplateConstant          = "decoding repository record on page %d: %w"
	apiStatusErrorTemplateConstant               = "repository listing request to %s returned status %d"
	pageFetchedMessageConstant                   = "repository listing page fetched"
	pageLogFieldNameConstant                     = "page"
	recordCountLogFieldNameConstant              = "record_count"
	organizationLogFieldNameConstant             = "organization"
)

// HTTPClient abstracts the HTTP transport used for GitHub API requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Sentinel errors reported during client construction and listing validation.
var (
	// ErrLoggerNotConfigured indicates the client was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)
	// ErrOrganizationRequired indicates a listing was requested without an organization.
	ErrOrganizationRequired = errors.New(organizationRequiredMessageConstant)
	// ErrPageHandlerRequired indicates a listing was requested without a page handler.
	ErrPageHandlerRequired = errors.New(pageHandlerRequiredMessageConstant)
)

// APIStatusError reports a non-success HTTP status from the listing endpoint.
type APIStatusError struct {
	Endpoint   string
	StatusCode int
}

// Error describes the failed request.
func (statusError APIStatusError) Error() string {
	return fmt.Sprintf(apiStatusErrorTemplateConstant, statusError.Endpoint, statusError.StatusCode)
}

// ClientConfiguration adjusts endpoint, page size, and authentication of the client.
type ClientConfiguration struct {
	BaseURL     string
	PageSize    int
	BearerToken string
}

// RepositoryPage carries one fetched page of repository records alongside the
// API's raw serialization of each record, preserved for cache persistence.
type RepositoryPage struct {
	Records    []RepositoryRecord
	RawRecords []json.RawMessage
}

// PageHandler consumes one page of repository records as it is fetched.
type PageHandler func(page RepositoryPage) error

// Client lists organization repositories through the GitHub REST API.
type Client struct {
	logger        *zap.Logger
	httpClient    HTTPClient
	configuration ClientConfiguration
}

// NewClient constructs a Client with defaults applied for omitted configuration.
func NewClient(logger *zap.Logger, httpClient HTTPClient, configuration ClientConfiguration) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeoutConstant}
	}
	if len(configuration.BaseURL) == 0 {
		configuration.BaseURL = defaultBaseURLConstant
	}
	if configuration.PageSize <= 0 {
		configuration.PageSize = defaultPageSizeConstant
	}

	return &Client{
		logger:        logger,
		httpClient:    httpClient,
		configuration: configuration,
	}, nil
}

// ListOrganizationRepositories pages through the organization listing endpoint
// and streams every page to the handler until an empty page is returned. The
// handler receives pages in order; its first error aborts the listing.
func (client *Client) ListOrganizationRepositories(executionContext context.Context, organization string, handlePage PageHandler) error {
	if len(organization) == 0 {
		return ErrOrganizationRequired
	}
	if handlePage == nil {
		return ErrPageHandlerRequired
	}

	endpoint := fmt.Sprintf(organizationRepositoriesPathTemplateConstant, client.configuration.BaseURL, url.PathEscape(organization))

	for pageNumber := 1; ; pageNumber++ {
		repositoryPage, pageError := client.fetchPage(executionContext, endpoint, pageNumber)
		if pageError != nil {
			return pageError
		}

		if len(repositoryPage.Records) == 0 {
			return nil
		}

		client.logger.Debug(
			pageFetchedMessageConstant,
			zap.String(organizationLogFieldNameConstant, organization),
			zap.Int(pageLogFieldNameConstant, pageNumber),
			zap.Int(recordCountLogFieldNameConstant, len(repositoryPage.Records)),
		)

		if handlerError := handlePage(repositoryPage); handlerError != nil {
			return handlerError
		}
	}
}

func (client *Client) fetchPage(executionContext context.Context, endpoint string, pageNumber int) (RepositoryPage, error) {
	listingRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, endpoint, nil)
	if requestError != nil {
		return RepositoryPage{}, fmt.Errorf(requestCreationErrorTemplateConstant, requestError)
	}

	queryParameters := listingRequest.URL.Query()
	queryParameters.Set(perPageQueryParameterNameConstant, strconv.Itoa(client.configuration.PageSize))
	queryParameters.Set(pageQueryParameterNameConstant, strconv.Itoa(pageNumber))
	listingRequest.URL.RawQuery = queryParameters.Encode()

	listingRequest.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	if len(client.configuration.BearerToken) > 0 {
		listingRequest.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(bearerTokenTemplateConstant, client.configuration.BearerToken))
	}

	listingResponse, executionError := client.httpClient.Do(listingRequest)
	if executionError != nil {
		return RepositoryPage{}, fmt.Errorf(requestExecutionErrorTemplateConstant, pageNumber, executionError)
	}
	defer listingResponse.Body.Close()

	if listingResponse.StatusCode != http.StatusOK {
		io.Copy(io.Discard, listingResponse.Body)
		return RepositoryPage{}, APIStatusError{Endpoint: endpoint, StatusCode: listingResponse.StatusCode}
	}

	var rawRecords []json.RawMessage
	if decodeError := json.NewDecoder(listingResponse.Body).Decode(&rawRecords); decodeError != nil {
		return RepositoryPage{}, fmt.Errorf(responseDecodingErrorTemplateConstant, pageNumber, decodeError)
	}

	repositoryRecords := make([]RepositoryRecord, 0, len(rawRecords))
	for _, rawRecord := range rawRecords {
		var repositoryRecord RepositoryRecord
		if unmarshalError := json.Unmarshal(rawRecord, &repositoryRecord); unmarshalError != nil {
			return RepositoryPage{}, fmt.Errorf(recordDecodingErrorTemplateConstant, pageNumber, unmarshalError)
		}
		repositoryRecords = append(repositoryRecords, repositoryRecord)
	}

	return RepositoryPage{Records: repositoryRecords, RawRecords: rawRecords}, nil
}
