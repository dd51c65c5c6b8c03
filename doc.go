// Package peyflex provides a Go client for the Peyflex bills-payment API:
// airtime, data bundles, cable TV subscriptions and electricity tokens.
//
// Basic usage:
//
//	client, err := peyflex.New("your-api-token")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	balance, err := client.GetBalance(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.PurchaseAirtime(ctx, "mtn", "08012345678", 100)
//	if err != nil {
//	    var apiErr *peyflex.Error
//	    if errors.As(err, &apiErr) {
//	        log.Printf("status %d: %s", apiErr.StatusCode, apiErr.Message)
//	    }
//	}
//
// Every method returns the decoded JSON object as a [Response]; the shape is
// whatever the API sends back. Failures are always reported as *[Error].
//
// Settings can also be read from YAML or dotenv files and PEYFLEX_*
// environment variables with [LoadConfig] and turned into a client with
// [NewFromConfig].
package peyflex
