// Package gbm implements gradient boosted regression trees.
//
// The engine fits an additive ensemble of regression trees by stage-wise
// functional-gradient descent: each iteration draws a bootstrap bag from
// the training partition, computes the working response (negative loss
// gradient) under the active distribution, grows one regression tree on
// the in-bag rows, refits each terminal node to the loss-minimizing
// constant, and adds the shrunken tree contribution to the running fit.
//
// Entry points are Fit, Extend, (*Ensemble).Predict and
// (*Ensemble).Deviance. Cross-validation lives in CrossValidate, which
// orchestrates independent per-fold Fit calls and is the only place
// anything runs concurrently; a single Fit or Extend call is strictly
// sequential.
package gbm
