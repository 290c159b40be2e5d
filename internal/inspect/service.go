package inspect

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/zig-devel/overseer/internal/githubapi"
)

const (
	listerRequiredMessageConstant       = "inspect service repository lister not configured"
	cacheRequiredMessageConstant        = "inspect service directory cache not configured"
	synchronizerRequiredMessageConstant = "inspect service mirror synchronizer not configured"
	checkerRequiredMessageConstant      = "inspect service drift checker not configured"

	fetchingDirectoryMessageConstant     = "Fetching repository directory"
	reusingDirectoryMessageConstant      = "Reusing cached repository directory"
	invalidatedCacheMessageConstant      = "Invalidated repository cache"
	skippingRepositoryMessageConstant    = "Skipping out-of-scope repository"
	inspectingRepositoryMessageConstant  = "Inspecting repository"
	inspectionCompletedMessageConstant   = "All repositories passed inspection"
	organizationLogFieldConstant         = "organization"
	repositoryLogFieldConstant           = "repository"
	cacheFileLogFieldConstant            = "cache_file"
	reposDirectoryLogFieldConstant       = "repos_dir"
	inspectedCountLogFieldConstant       = "inspected"
)

// Sentinel errors reported during service construction.
var (
	// ErrListerNotConfigured indicates the service was constructed without a repository lister.
	ErrListerNotConfigured = errors.New(listerRequiredMessageConstant)
	// ErrCacheNotConfigured indicates the service was constructed without a directory cache.
	ErrCacheNotConfigured = errors.New(cacheRequiredMessageConstant)
	// ErrSynchronizerNotConfigured indicates the service was constructed without a mirror synchronizer.
	ErrSynchronizerNotConfigured = errors.New(synchronizerRequiredMessageConstant)
	// ErrCheckerNotConfigured indicates the service was constructed without a drift checker.
	ErrCheckerNotConfigured = errors.New(checkerRequiredMessageConstant)
)

// ServiceDependencies bundles the collaborators required by the inspect service.
type ServiceDependencies struct {
	Logger             *zap.Logger
	RepositoryLister   RepositoryLister
	DirectoryCache     DirectoryCache
	MirrorSynchronizer MirrorSynchronizer
	DriftChecker       DriftChecker
}

// Service drives the inspection pipeline over the organization's repository
// records, stopping the whole run at the first fatal finding.
type Service struct {
	logger             *zap.Logger
	repositoryLister   RepositoryLister
	directoryCache     DirectoryCache
	mirrorSynchronizer MirrorSynchronizer
	driftChecker       DriftChecker
}

// NewService constructs a Service after validating its dependencies.
func NewService(serviceDependencies ServiceDependencies) (*Service, error) {
	if serviceDependencies.RepositoryLister == nil {
		return nil, ErrListerNotConfigured
	}
	if serviceDependencies.DirectoryCache == nil {
		return nil, ErrCacheNotConfigured
	}
	if serviceDependencies.MirrorSynchronizer == nil {
		return nil, ErrSynchronizerNotConfigured
	}
	if serviceDependencies.DriftChecker == nil {
		return nil, ErrCheckerNotConfigured
	}

	logger := serviceDependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:             logger,
		repositoryLister:   serviceDependencies.RepositoryLister,
		directoryCache:     serviceDependencies.DirectoryCache,
		mirrorSynchronizer: serviceDependencies.MirrorSynchronizer,
		driftChecker:       serviceDependencies.DriftChecker,
	}, nil
}

// Run executes the inspection pipeline according to the provided options.
//
// Records are processed strictly in cache order, one at a time. Out-of-scope
// records are skipped before any policy or mirror work. Any policy violation,
// synchronization failure, or drift finding aborts the run immediately; a
// later invocation restarts from the first record.
func (service *Service) Run(executionContext context.Context, options CommandOptions) error {
	if options.InvalidateCache {
		if removeError := os.RemoveAll(options.ReposDirectory); removeError != nil {
			return removeError
		}
		if invalidationError := service.directoryCache.Invalidate(); invalidationError != nil {
			return invalidationError
		}
		service.logger.Info(invalidatedCacheMessageConstant,
			zap.String(reposDirectoryLogFieldConstant, options.ReposDirectory),
			zap.String(cacheFileLogFieldConstant, service.directoryCache.FilePath()),
		)
	}

	if populationError := service.ensureDirectoryPopulated(executionContext, options.Organization); populationError != nil {
		return populationError
	}

	repositoryRecords, loadError := service.directoryCache.LoadRecords()
	if loadError != nil {
		return loadError
	}

	inspectedCount := 0
	for _, repositoryRecord := range repositoryRecords {
		if !repositoryRecord.InScope() {
			service.logger.Debug(skippingRepositoryMessageConstant, zap.String(repositoryLogFieldConstant, repositoryRecord.Name))
			continue
		}

		if inspectionError := service.inspectRepository(executionContext, repositoryRecord, options); inspectionError != nil {
			return inspectionError
		}
		inspectedCount++
	}

	service.logger.Info(inspectionCompletedMessageConstant, zap.Int(inspectedCountLogFieldConstant, inspectedCount))
	return nil
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

func (service *Service) inspectRepository(executionContext context.Context, repositoryRecord githubapi.RepositoryRecord, options CommandOptions) error {
	service.logger.Info(inspectingRepositoryMessageConstant, zap.String(repositoryLogFieldConstant, repositoryRecord.Name))

	if options.CheckRepositorySettings {
		if policyError := EvaluatePolicy(repositoryRecord); policyError != nil {
			return policyError
		}
	}

	mirrorPath, synchronizationError := service.mirrorSynchronizer.Sync(executionContext, repositoryRecord)
	if synchronizationError != nil {
		return synchronizationError
	}

	if options.CheckUpdates {
		if driftError := service.driftChecker.Check(executionContext, repositoryRecord.Name, mirrorPath); driftError != nil {
			return driftError
		}
	}

	return nil
}
