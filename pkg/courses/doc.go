// Package courses implements course authoring: courses with ordered modules
// and lessons, created atomically and published with an explicit flag.
package courses
