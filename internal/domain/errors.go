package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrSigningFailed = errors.New("signing failed")
	ErrWSDisconnect  = errors.New("websocket disconnected")
	ErrContextDone   = errors.New("context cancelled")

	// ErrResolverFailed: resolver returned no markets for the event ticker
	// (spec §7, "Resolver failure (no markets)" -> emit error, close session).
	ErrResolverFailed = errors.New("resolver: no markets found for event")

	// ErrAuthRequired: upstream demanded credentials the session does not
	// have, or rejected the ones it has, within the first-message window.
	ErrAuthRequired = errors.New("upstream: authentication required")

	// ErrUpstreamClosed: the upstream transport closed or errored; spec §7
	// says do not auto-reconnect at this layer.
	ErrUpstreamClosed = errors.New("upstream: transport closed")

	// ErrMalformedMessage: an inbound message could not be decoded into any
	// known tagged variant. Callers log and drop, never crash.
	ErrMalformedMessage = errors.New("upstream: malformed message")

	// ErrTickAborted: a periodic tick's computation failed; the tick is
	// skipped and the next one runs on schedule.
	ErrTickAborted = errors.New("session: tick aborted")

	// ErrSubscriberGone: the subscriber transport's send failed; treated as
	// session cancellation (spec §7).
	ErrSubscriberGone = errors.New("subscriber: send failed")
)
