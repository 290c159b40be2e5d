// Package githubapi provides a typed client for the GitHub REST endpoints used
// by overseer.
//
// It defines RepositoryRecord models matching the organization repository
// listing response and the Client that pages through the listing endpoint,
// streaming each page to a caller-supplied handler.
package githubapi
