// Package server is an HTTP front end for Twitter login.
//
// It exposes the login redirect and callback endpoints backed by an
// oauth.Flow, a health endpoint over the verifier store, and Prometheus
// metrics for both inbound routes and outbound provider calls.
package server
