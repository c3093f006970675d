// Package http implements the HTTP transport of the demo API.
//
// Every traced route runs through the tracelog interceptor, either as an
// endpoint adapter that hands the call's [tracelog.Result] to the interceptor,
// or as the withTraceLogging filter that records plain handlers from the
// outside. Trace ids, compression and method checks are handled here before
// requests reach the service layer.
package http
