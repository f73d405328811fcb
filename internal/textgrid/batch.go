package textgrid

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mgpai22/kalign/internal/alignment"
)

// DefaultConcurrency is used when ConvertBatch is given no worker count.
const DefaultConcurrency = 3

// one alignment file to convert
type Job struct {
	Index  int
	Input  string
	Output string
	Parse  alignment.Options
	// Relabel maps decoder labels back to transcript words.
	Relabel map[string]string
}

// outcome of converting one file
type Result struct {
	Job    Job
	Spans  []alignment.WordSpan
	Words  int
	Phones int
	Err    error
}

// Convert parses one alignment file and writes its TextGrid.
func Convert(job Job, opts Options) Result {
	res := Result{Job: job}

	spans, err := alignment.ParseFile(job.Input, job.Parse)
	if err != nil {
		res.Err = err
		return res
	}
	if len(job.Relabel) > 0 {
		spans = alignment.Relabel(spans, job.Relabel)
	}
	res.Spans = spans

	g, err := Build(spans, opts)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", job.Input, err)
		return res
	}
	res.Phones = len(g.Tiers[0].Intervals)
	res.Words = len(g.Tiers[1].Intervals)

	if err := WriteFile(job.Output, spans, opts); err != nil {
		res.Err = err
	}
	return res
}

// converts alignment files in parallel; each file fails on its own and the
// results come back in job order
func ConvertBatch(ctx context.Context, jobs []Job, concurrency int, opts Options) []Result {
	if len(jobs) == 0 {
		return nil
	}

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	workChan := make(chan Job, len(jobs))
	resultChan := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for job := range workChan {
				if err := ctx.Err(); err != nil {
					resultChan <- Result{Job: job, Err: err}
					continue
				}
				resultChan <- Convert(job, opts)
			}
		})
	}

	for i, job := range jobs {
		job.Index = i
		workChan <- job
	}
	close(workChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, 0, len(jobs))
	for result := range resultChan {
		results = append(results, result)
	}

	// sort by index to maintain order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Job.Index < results[j].Job.Index
	})

	return results
}
