// Package config loads service configuration from INSIGHTS_* environment
// variables with sane defaults and fail-fast validation.
package config
