// Package healthcheck probes an HTTP(S) endpoint and decides whether it is
// healthy. A response with a status code in [200, 400) is healthy; transport
// errors, timeouts and every other status are not. Redirects are never
// followed, so a 3xx response counts as healthy.
//
// Probe makes a single attempt. ProbeWithRetry makes up to the configured
// number of attempts, pausing for a fixed interval after each failure, and
// stops at the first healthy response.
package healthcheck
