package list

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/zig-devel/overseer/internal/githubapi"
)

const (
	listerRequiredMessageConstant = "list service repository lister not configured"
	cacheRequiredMessageConstant  = "list service directory cache not configured"
	writerRequiredMessageConstant = "list service output writer not configured"

	fetchingDirectoryMessageConstant = "Fetching repository directory"
	reusingDirectoryMessageConstant  = "Reusing cached repository directory"
	organizationLogFieldConstant     = "organization"
	cacheFileLogFieldConstant        = "cache_file"

	tableRowTemplateConstant    = "%s\t%s\t%s\t%d\n"
	tableHeaderTemplateConstant = "%s\t%s\t%s\t%s\n"
	tableColumnPaddingConstant  = 2

	nameColumnHeaderConstant       = "REPOSITORY"
	urlColumnHeaderConstant        = "URL"
	updatedColumnHeaderConstant    = "UPDATED"
	openIssuesColumnHeaderConstant = "OPEN ISSUES"
)

// Sentinel errors reported during service construction.
var (
	// ErrListerNotConfigured indicates the service was constructed without a repository lister.
	ErrListerNotConfigured = errors.New(listerRequiredMessageConstant)
	// ErrCacheNotConfigured indicates the service was constructed without a directory cache.
	ErrCacheNotConfigured = errors.New(cacheRequiredMessageConstant)
	// ErrWriterNotConfigured indicates the service was constructed without an output writer.
	ErrWriterNotConfigured = errors.New(writerRequiredMessageConstant)
)

// RepositoryLister enumerates an organization's repositories page by page.
type RepositoryLister interface {
	ListOrganizationRepositories(executionContext context.Context, organization string, handlePage githubapi.PageHandler) error
}

// DirectoryCache persists repository records one JSON object per line.
type DirectoryCache interface {
	FilePath() string
	Exists() bool
	AppendRecords(rawRecords []json.RawMessage) error
	LoadRecords() ([]githubapi.RepositoryRecord, error)
}

// CommandOptions captures the finalized parameters for one listing run.
type CommandOptions struct {
	Organization string
	GitHubToken  string
}

// ServiceDependencies bundles the collaborators required by the list service.
type ServiceDependencies struct {
	Logger           *zap.Logger
	RepositoryLister RepositoryLister
	DirectoryCache   DirectoryCache
	OutputWriter     io.Writer
}

// Service renders the organization's in-scope repositories as an aligned
// text table, reusing the directory cache when it is already populated.
type Service struct {
	logger           *zap.Logger
	repositoryLister RepositoryLister
	directoryCache   DirectoryCache
	outputWriter     io.Writer
}

// NewService constructs a Service after validating its dependencies.
func NewService(serviceDependencies ServiceDependencies) (*Service, error) {
	if serviceDependencies.RepositoryLister == nil {
		return nil, ErrListerNotConfigured
	}
	if serviceDependencies.DirectoryCache == nil {
		return nil, ErrCacheNotConfigured
	}
	if serviceDependencies.OutputWriter == nil {
		return nil, ErrWriterNotConfigured
	}

	logger := serviceDependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:           logger,
		repositoryLister: serviceDependencies.RepositoryLister,
		directoryCache:   serviceDependencies.DirectoryCache,
		outputWriter:     serviceDependencies.OutputWriter,
	}, nil
}

// Run prints the in-scope repositories from the directory cache, fetching the
// directory first when no cache file exists yet.
func (service *Service) Run(executionContext context.Context, options CommandOptions) error {
	if populationError := service.ensureDirectoryPopulated(executionContext, options.Organization); populationError != nil {
		return populationError
	}

	repositoryRecords, loadError := service.directoryCache.LoadRecords()
	if loadError != nil {
		return loadError
	}

	tableWriter := tabwriter.NewWriter(service.outputWriter, 0, 0, tableColumnPaddingConstant, ' ', 0)
	if _, writeError := fmt.Fprintf(tableWriter, tableHeaderTemplateConstant, nameColumnHeaderConstant, urlColumnHeaderConstant, updatedColumnHeaderConstant, openIssuesColumnHeaderConstant); writeError != nil {
		return writeError
	}

	for _, repositoryRecord := range repositoryRecords {
		if !repositoryRecord.InScope() {
			continue
		}
		if _, writeError := fmt.Fprintf(tableWriter, tableRowTemplateConstant, repositoryRecord.Name, repositoryRecord.HTMLURL, repositoryRecord.UpdatedAt, repositoryRecord.OpenIssuesCount); writeError != nil {
			return writeError
		}
	}

	return tableWriter.Flush()
}

func (service *Service) ensureDirectoryPopulated(executionContext context.Context, organization string) error {
	if service.directoryCache.Exists() {
		service.logger.Info(reusingDirectoryMessageConstant, zap.String(cacheFileLogFieldConstant, service.directoryCache.FilePath()))
		return nil
	}

	service.logger.Info(fetchingDirectoryMessageConstant, zap.String(organizationLogFieldConstant, organization))
	return service.repositoryLister.ListOrganizationRepositories(executionContext, organization, func(page githubapi.RepositoryPage) error {
		return service.directoryCache.AppendRecords(page.RawRecords)
	})
}
