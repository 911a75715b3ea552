// Package config provides configuration loading, merging, and validation
// facilities for the fitsync client.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources win under mergo's no-override merge):
//  1. Command-line flags
//  2. Environment variables
//  3. JSON config file
//
// The main entry points are [GetStructuredConfig] for the raw merged form and
// [GetClientConfig] for the validated client view with defaults applied.
package config
