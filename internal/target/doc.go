// Package target parses the URL a health check is aimed at into its
// scheme, host, port and request path. The port defaults to 80 for http and
// 443 for https when the URL does not carry one.
package target
