// Package statues computes exact discrete probability distributions.
//
// # Overview
//
// Random variables are nodes of a lazy expression graph. Leaves hold a
// finite table of (value, weight) pairs; every other node (Joint, Map,
// Given, Switch, Clauses, Flat) describes how its value derives from its
// children. Nothing is computed until a node is evaluated.
//
// Evaluation enumerates the graph with the Statues binding protocol: a node
// reached through several paths from the query root takes a single value
// per combination, so dependencies are honored and
//
//	x, _ := statues.Die[statues.Rat](6)
//	d, _ := statues.Eval(statues.Sub[statues.Rat](x, x))
//
// is certainly 0, while x minus x.Clone() is the difference of two
// independent dice. Only distinct variables are enumerated, never the
// paths that lead to them.
//
// # Probability domains
//
// Weights are generic over Prob. Rat gives exact rational results, Float is
// fast and inexact, and Decimal uses arbitrary-precision decimals.
//
//	die, _ := statues.Die[statues.Rat](6)
//	sum := statues.Add[statues.Rat](die, die.Clone())
//	p, _ := statues.ProbOf(sum, 7) // 1/6
//
// # Conditioning
//
// Given filters a node on boolean guards and Evaluate renormalizes what is
// left. Evidence carries observations and global conditions supplied by the
// caller; each is released with the function returned when it was added.
//
//	rain, _ := statues.BoolProb(statues.NewRat(1, 5))
//	ev := statues.NewEvidence[statues.Rat]()
//	release := ev.Given(wetGrass)
//	defer release()
//	leaf, _ := statues.Evaluate(ctx, rain, statues.EvalConfig[statues.Rat]{
//	    Normalize: true, Sort: true, Evidence: ev,
//	})
//
// Clauses builds conditional probability tables from disjoint guards, with
// an explicit else branch, an automatic one, or one derived from a prior.
//
// # Derived distributions
//
// Times composes independent copies under an operation, by doubling when
// the operation declares the Associative law. Draw gives ordered or sorted
// draws with or without replacement. FastMax and FastMin compute extrema of
// independent variables from cumulative tables.
//
// # Queries
//
// Mean, Variance, Entropy, MutualInformation and the other statistics work
// on the evaluated Leaf. Format renders a Leaf as fractions, decimals,
// percentages or histogram bars. SampleNode and EstimateMC draw whole
// worlds at random, honoring the same bindings as enumeration.
//
// # Errors
//
// Every failure is an *Error whose Kind tells construction, evaluation,
// infeasible evidence, domain and numeric capability errors apart; use
// errors.Is with the Err sentinels. An error raised during enumeration
// leaves no binding behind, so the graph can be evaluated again.
package statues
