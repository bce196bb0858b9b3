// Package observability provides the HTTP access log and Prometheus
// metrics for the API.
//
// Every request passes through Middleware, which records one access log
// line and updates the request counters. Failure codes are counted
// separately through Metrics.ObserveFailure, which the failure translator
// calls once per failed request.
package observability
