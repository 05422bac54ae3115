// Package reporting builds the admin usage reports. Raw activity comes from
// an ordered chain of physical sources (activity logs, audit trail, login
// logs); the first source with data for a window answers, sources are never
// merged, and an exhausted chain yields an empty report rather than an
// error. On top of the chain sit the period aggregator, the growth
// comparison against the previous window, and the export serializers.
package reporting
