package inspect

// CommandOptions captures the finalized parameters for one inspection run.
// CacheFilePath is always resolved by the time a Service sees it; an empty
// configured value defaults to the cache file inside ReposDirectory.
type CommandOptions struct {
	Organization            string
	GitHubToken             string
	ReposDirectory          string
	CacheFilePath           string
	InvalidateCache         bool
	CheckUpdates            bool
	CheckRepositorySettings bool
}
