// Package sqltrace times SQL statements and logs them next to the trace
// record of the call that issued them.
//
// A [DB] wraps *sql.DB. Every statement is logged with its normalized text,
// sanitized arguments, duration and, for exec statements, the number of
// affected rows. Statements at or above the slow threshold are logged at warn
// level with a duration bucket.
package sqltrace
