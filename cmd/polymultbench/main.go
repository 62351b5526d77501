// Command polymultbench multiplies two random polynomials of the requested
// sizes and reports which algorithm the planner chose and how long the
// call took, in the spirit of the teacher corpus's small examples/ring
// driver programs.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nthroot-labs/polymult/engine"
	"github.com/nthroot-labs/polymult/polymult"
)

func main() {
	size1 := flag.Int("size1", 1000, "size of the first operand")
	size2 := flag.Int("size2", 1000, "size of the second operand")
	threads := flag.Int("threads", 1, "number of threads (1 = no helper goroutines)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	eng := engine.NewFloatEngine(engine.LineWidth)
	h := polymult.NewHandle(eng, *threads)
	if err := h.SetNumThreads(*threads); err != nil {
		log.Fatal().Err(err).Msg("invalid thread count")
	}
	h.LaunchHelpers()
	defer h.Done()

	rng := rand.New(rand.NewSource(1))
	a := randomPoly(eng, *size1, rng)
	b := randomPoly(eng, *size2, rng)

	plan, err := polymult.BuildPlan(*size1, *size2, polymult.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build plan")
	}
	dst := polymult.NewPolynomial(eng, plan.OutSize)

	start := time.Now()
	if err := h.Polymult(dst, a, b, polymult.Options{}); err != nil {
		log.Fatal().Err(err).Msg("polymult failed")
	}
	elapsed := time.Since(start)

	fmt.Printf("algorithm=%s outsize=%d threads=%d elapsed=%s\n", plan.Algo, plan.OutSize, *threads, elapsed)
	os.Exit(0)
}

func randomPoly(eng engine.Engine, size int, rng *rand.Rand) *polymult.Polynomial {
	p := polymult.NewPolynomial(eng, size)
	for _, c := range p.Coeffs {
		c.Samples[0] = rng.Float64()*200 - 100
	}
	return p
}
