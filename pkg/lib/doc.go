// Package lib provides a Go SDK for running task pipelines programmatically.
//
// This package allows applications to load a pipeline YAML file and run its
// task tree without the dashboard or shelling out to the taskspipeline CLI
// binary. It is useful for scripting, automation, and CI jobs.
//
// # Quick Start
//
// Create a client, load a pipeline and run it:
//
//	client, err := lib.New(lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, err := client.LoadPipeline(ctx, "/path/to/pipeline.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := p.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Status)
//
// # Cancellation
//
// Cancelling the context passed to [Pipeline.Run] cancels the whole task tree,
// the run returns once every task has stopped with the [TaskStatusCancelled]
// status.
//
// # Error Handling
//
// Errors returned by the SDK can be checked with [errors.Is]:
//
//	_, err := client.LoadPipeline(ctx, "pipeline.yaml")
//	if errors.Is(err, lib.ErrNotValid) {
//	    // Handle invalid pipeline description.
//	}
//
// Task failures are not errors, they are reported with the task statuses of
// the [RunResult].
package lib
