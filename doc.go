// Package goboost provides gradient boosted regression models for Go,
// fitting additive ensembles of regression trees by stage-wise
// functional-gradient descent.
//
// The engine supports a fixed family of loss distributions (Gaussian,
// Laplace, Student-t, Bernoulli, huberized hinge, multinomial, AdaBoost
// exponential, Poisson, Cox partial likelihood, quantile, and pairwise
// ranking), per-feature monotonicity constraints, row bagging with
// out-of-bag improvement estimates, and per-node feature subsampling.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/goml-dev/goboost/gbm"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := []float64{2, 4, 6, 8}
//
//	    data, err := gbm.NewDataset(X, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    ens, err := gbm.Fit(data, gbm.Config{
//	        Distribution: gbm.Gaussian,
//	        NTrees:       100,
//	        Shrinkage:    0.1,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := ens.Predict(X, 100)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Predictions:", mat.Formatted(pred))
//	}
//
// # Packages
//
//   - gbm: the boosting engine (distributions, tree builder, driver,
//     ensemble persistence, cross-validation orchestration)
//   - pkg/errors: structured error types with stack traces
//   - pkg/log: structured logging setup
//   - core/model: model persistence helpers
//   - core/parallel: CPU-parallel fold execution
//
// A single Fit or Extend call is strictly sequential; parallelism is only
// applied across independent fold fits, each on its own data view.
package goboost
