package repocache

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zig-devel/overseer/internal/githubapi"
)

const (
	cachePathRequiredMessageConstant       = "directory cache path required"
	cacheDirectoryErrorTemplateConstant    = "creating directory cache parent: %w"
	cacheOpenErrorTemplateConstant         = "opening directory cache for append: %w"
	cacheWriteErrorTemplateConstant        = "appending record to directory cache: %w"
	cacheReadErrorTemplateConstant         = "reading directory cache: %w"
	cacheRecordDecodeErrorTemplateConstant = "decoding directory cache line %d: %w"
	cacheInvalidateErrorTemplateConstant   = "removing directory cache: %w"
	recordSeparatorConstant                = "\n"
	cacheFilePermissionsConstant           = 0o644
	cacheDirectoryPermissionsConstant      = 0o755
	scannerBufferInitialSizeConstant       = 64 * 1024
	scannerBufferMaximumSizeConstant       = 1024 * 1024
)

// ErrCachePathRequired indicates the cache was constructed without a file path.
var ErrCachePathRequired = errors.New(cachePathRequiredMessageConstant)

// DirectoryCache persists repository records as line-delimited JSON. The file's
// existence alone marks the cache as populated; staleness is controlled by the
// caller through explicit invalidation, never by age.
type DirectoryCache struct {
	filePath string
}

// NewDirectoryCache constructs a cache backed by the provided file path.
func NewDirectoryCache(filePath string) (*DirectoryCache, error) {
	if len(filePath) == 0 {
		return nil, ErrCachePathRequired
	}
	return &DirectoryCache{filePath: filePath}, nil
}

// FilePath returns the backing file location.
func (cache *DirectoryCache) FilePath() string {
	return cache.filePath
}

// Exists reports whether the cache file has been populated.
func (cache *DirectoryCache) Exists() bool {
	_, statError := os.Stat(cache.filePath)
	return statError == nil
}

// AppendRecords writes the raw record serializations to the cache, one compact
// JSON object per line. Records are appended as pages arrive so an interrupted
// enumeration leaves a valid prefix behind.
func (cache *DirectoryCache) AppendRecords(rawRecords []json.RawMessage) error {
	if mkdirError := os.MkdirAll(filepath.Dir(cache.filePath), cacheDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(cacheDirectoryErrorTemplateConstant, mkdirError)
	}

	cacheFile, openError := os.OpenFile(cache.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, cacheFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(cacheOpenErrorTemplateConstant, openError)
	}
	defer cacheFile.Close()

	for _, rawRecord := range rawRecords {
		var compactedRecord bytes.Buffer
		if compactError := json.Compact(&compactedRecord, rawRecord); compactError != nil {
			return fmt.Errorf(cacheWriteErrorTemplateConstant, compactError)
		}
		compactedRecord.WriteString(recordSeparatorConstant)
		if _, writeError := cacheFile.Write(compactedRecord.Bytes()); writeError != nil {
			return fmt.Errorf(cacheWriteErrorTemplateConstant, writeError)
		}
	}

	return nil
}

// LoadRecords decodes every cached line into a repository record, preserving
// the order in which records were appended. Blank lines are skipped.
func (cache *DirectoryCache) LoadRecords() ([]githubapi.RepositoryRecord, error) {
	cacheFile, openError := os.Open(cache.filePath)
	if openError != nil {
		return nil, fmt.Errorf(cacheReadErrorTemplateConstant, openError)
	}
	defer cacheFile.Close()

	lineScanner := bufio.NewScanner(cacheFile)
	lineScanner.Buffer(make([]byte, scannerBufferInitialSizeConstant), scannerBufferMaximumSizeConstant)

	var repositoryRecords []githubapi.RepositoryRecord
	lineNumber := 0
	for lineScanner.Scan() {
		lineNumber++
		recordLine := bytes.TrimSpace(lineScanner.Bytes())
		if len(recordLine) == 0 {
			continue
		}

		var repositoryRecord githubapi.RepositoryRecord
		if unmarshalError := json.Unmarshal(recordLine, &repositoryRecord); unmarshalError != nil {
			return nil, fmt.Errorf(cacheRecordDecodeErrorTemplateConstant, lineNumber, unmarshalError)
		}
		repositoryRecords = append(repositoryRecords, repositoryRecord)
	}
	if scanError := lineScanner.Err(); scanError != nil {
		return nil, fmt.Errorf(cacheReadErrorTemplateConstant, scanError)
	}

	return repositoryRecords, nil
}

// Invalidate deletes the cache file so the next run repopulates it from the API.
func (cache *DirectoryCache) Invalidate() error {
	removeError := os.Remove(cache.filePath)
	if removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return fmt.Errorf(cacheInvalidateErrorTemplateConstant, removeError)
	}
	return nil
}
