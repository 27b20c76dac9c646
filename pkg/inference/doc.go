// Package inference sends chat completions to a compute provider with a
// bounded retry loop.
//
// A Runner asks the broker for fresh billing headers on every attempt, posts
// the request through a Completer and inspects the reply. A reply with
// message content ends the loop. A reply whose error reports an owed fee
// (for example "settleFee failed: expected 0.0042 A0GI") triggers exactly one
// SettleFee call for that attempt before retrying. Anything else is logged
// and retried after a fixed delay.
//
//	runner, err := inference.NewRunner(broker, inference.NewClient(time.Minute), inference.Options{
//		MaxRetries: 3,
//		RetryDelay: 2 * time.Second,
//	})
//	res, err := runner.Run(ctx, inference.Target{Provider: p, Endpoint: meta.Endpoint, Model: meta.Model}, "Hello")
//	if res.Succeeded {
//		fmt.Println(res.Content)
//	}
package inference
