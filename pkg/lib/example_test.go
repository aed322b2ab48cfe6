package lib_test

import (
	"context"
	"errors"
	"fmt"
	"testing/fstest"

	"github.com/slok/taskspipeline/pkg/lib"
)

// This example shows how to load a pipeline and run it.
func Example_run() {
	ctx := context.Background()

	// An in memory filesystem, by default the OS filesystem is used.
	fsys := fstest.MapFS{
		"pipeline.yaml": &fstest.MapFile{Data: []byte(`title: Example
systemNotification: false
rootTask:
  type: SequentialTask
  name: deploy
  tasks:
    - type: WaitForTask
      name: warmup
      params:
        waitFor: 0
`)},
	}

	client, err := lib.New(lib.Config{FS: fsys})
	if err != nil {
		panic(err)
	}

	p, err := client.LoadPipeline(ctx, "pipeline.yaml")
	if err != nil {
		panic(err)
	}

	res, err := p.Run(ctx)
	if err != nil {
		panic(err)
	}

	for _, t := range res.Tasks {
		fmt.Printf("%d %s %s\n", t.Index, t.Name, t.Status)
	}

	// Output:
	// 1 ⭣ deploy COMPLETED
	// 2 warmup COMPLETED
}

// This example shows how to check the SDK errors.
func Example_errors() {
	fsys := fstest.MapFS{
		"pipeline.yaml": &fstest.MapFile{Data: []byte("rootTask:\n  type: UnknownTask\n")},
	}

	client, err := lib.New(lib.Config{FS: fsys})
	if err != nil {
		panic(err)
	}

	_, err = client.LoadPipeline(context.Background(), "pipeline.yaml")
	fmt.Println(errors.Is(err, lib.ErrNotValid))

	// Output:
	// true
}
