// Package reqwest is a fluent HTTP client with deferred error handling.
//
// Requests are described through a chainable RequestBuilder obtained from a
// Client verb method. Any step of the chain can fail (a malformed header
// name, a body that does not encode), but the chain never has to be
// interrupted to check: the first failure is captured inside the builder,
// every later call becomes a pass-through, and the error surfaces exactly
// once, when Build or Send resolves the chain.
//
//	client, _ := reqwest.NewClient(reqwest.ClientOptions{Timeout: 10 * time.Second})
//	resp, err := client.Post("https://example.com/api").
//		Header("X-Token", token).
//		BodyJSON(payload).
//		Send(ctx)
package reqwest
