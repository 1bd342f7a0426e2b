// Command colgen solves a cutting stock instance by column generation
// and prints the resulting cutting plan.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"q.log/colgen/colgen"
	"q.log/colgen/glpk"
	"q.log/colgen/instance"
	"q.log/colgen/solver"
)

var (
	instancePath = flag.String("instance", "", "path to a YAML instance file")
	tolerance    = flag.Float64("tol", 0, "reduced-cost tolerance (0 = default)")
	maxIter      = flag.Int("max-iter", 0, "pricing round limit (0 = unlimited)")
	timeout      = flag.Duration("timeout", 0, "per-solve time limit (0 = none)")
	integer      = flag.Bool("integer", false, "also solve the final master with integral pattern counts")
	backend      = flag.String("backend", "exact", "solving engine: exact or glpk")
)

func main() {
	flag.Parse()
	defer glog.Flush()
	if err := run(); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run() error {
	if *instancePath == "" {
		return errors.New("-instance is required")
	}
	in, err := instance.Load(*instancePath)
	if err != nil {
		return err
	}

	var slv solver.Solver
	switch *backend {
	case "exact":
		slv = solver.Exact{}
	case "glpk":
		slv = glpk.Solver{}
	default:
		return errors.Errorf("unknown backend %q", *backend)
	}

	start := time.Now()
	res, err := colgen.Solve(context.Background(), in, colgen.Config{
		Tolerance:     *tolerance,
		MaxIterations: *maxIter,
		SolveTimeout:  *timeout,
		Solver:        slv,
		IntegerFinish: *integer,
	})
	if err != nil {
		return err
	}
	glog.Infof("solved in %v", time.Since(start))
	fmt.Print(res.Report())
	return nil
}
