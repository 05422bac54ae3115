// Package records serves the flat dashboard listings: error logs, logins,
// broken links and user accounts. Unlike the usage reports these read a
// single table each, with no fallback chain.
package records
