// Package assertions checks smoke test expectations against a response.
//
// Supported assertions:
//   - Status code equality (status == 201)
//   - Header presence (header location exists)
//
// A failed expectation is reported as a *Failure carrying the expected and
// actual values of every assertion that did not hold.
package assertions
