// Package inspect implements the organization inspection pipeline: repository
// enumeration into the directory cache, scope filtering, policy assertions,
// local mirror synchronization, and upstream version drift detection. The
// pipeline is strictly sequential and stops at the first violation.
package inspect
