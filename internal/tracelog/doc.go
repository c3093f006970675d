// Package tracelog implements request/response trace logging.
//
// Every intercepted call produces exactly one [TraceRecord]. The record is
// created on entry, populated with sanitized inputs (headers, query, declared
// arguments, request body), and settled once with the call's outcome. The
// [Emitter] writes the record when it settles.
//
// The dispatch layer tells the [Interceptor] how a call completes by returning
// a [Result]: [Immediate] for a plain value or error, [Deferred] for a
// [Future], or [Streaming] for a [Stream]. The interceptor observes the result
// and hands back a value that behaves exactly like the original.
package tracelog
