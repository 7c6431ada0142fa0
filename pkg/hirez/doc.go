// Package hirez provides a client for the Hi-Rez Studios game statistics API
// (Smite and Paladins).
//
// The Hi-Rez API requires every request to carry a per-call MD5 signature and
// a short-lived session id obtained from the createsession method. This client
// handles both transparently: it signs each request, creates a session lazily
// on first use, reuses it for the duration of its validity window, and renews
// it when it expires or the server stops accepting it. Concurrent callers
// never trigger more than one session creation at a time.
//
// # Authentication
//
// Every signed request embeds:
//   - Developer id: issued by Hi-Rez, sent as a path segment
//   - Signature: MD5 of devID + method + authKey + timestamp, hex encoded
//   - Session id: issued by createsession, valid for a limited time
//
// # Basic Usage
//
//	client, err := hirez.NewClient(&hirez.ClientConfig{
//	    BaseURL: hirez.SmitePCURL,
//	    DevID:   "1004",
//	    AuthKey: "23DF3C7E9BD14D84BF892AD206B6755C",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Any API method can be called by name; arguments become path segments.
//	raw, err := client.Call(ctx, "getgods", "1")
//
//	// Or decode straight into a type.
//	gods, err := hirez.Do[[]God](ctx, client, "getgods", "1")
//
// # Concurrency
//
// A Client is safe for concurrent use. CallAsync runs a call on its own
// goroutine and returns a future; all calls, blocking or not, share one
// session, and simultaneous calls that find no valid session wait for a
// single shared createsession request instead of issuing their own.
//
// # Error Handling
//
// Session creation failures wrap ErrSessionCreation and leave no session
// installed, so a later call retries from scratch:
//
//	_, err := client.Call(ctx, "getplayer", name)
//	if errors.Is(err, hirez.ErrSessionCreation) {
//	    // remote refused to issue a session; credentials may be wrong
//	}
package hirez
