// Package storage opens the relational database (postgres in deployments,
// sqlite for local development) and applies idempotent schema migrations.
package storage
