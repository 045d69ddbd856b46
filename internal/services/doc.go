// Package services defines the [MovieService] interface for movie databases and implements it for OMDb.
//
// # OMDb Implementation
//
// [OMDbService] issues GET requests against the OMDb API:
//   - search: ?apikey=<key>&s=<query>
//   - detail: ?apikey=<key>&i=<imdb id>
//
// Every request is built with the caller's context, so cancelling the context aborts the in-flight HTTP request.
// An optional [rate.Limiter] throttles requests client side; waiting for a token also honours the context.
//
// # Error Handling
//
//   - [shared.ErrAPIRequest] : transport failure, non-2xx status or undecodable body
//   - [ErrMovieNotFound] : OMDb answered with Response "False"
//   - [shared.ErrMissingCredentials] : no API key configured
//
// A cancelled request returns ctx.Err() as is.
package services
