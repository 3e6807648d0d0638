// Package util provides small helpers shared by mockhost packages.
//
// ResolveUnder resolves a request-supplied name inside a root directory.
package util
