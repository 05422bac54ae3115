// Package auth resolves API tokens to an AuthContext carrying the user's role
// and full capability set. Resolution happens once per request at the
// middleware boundary; handlers check the pre-resolved set instead of issuing
// their own permission queries.
package auth
