// Package mip builds and solves mixed-integer linear models.
//
// A Session owns decision variables and linear range constraints and
// drives an engine that does the actual solving. The default engine is
// the root-node engine in engine/relax; engine/scip drives an external
// SCIP binary instead.
//
//	s, err := mip.New()
//	if err != nil {
//		// ...
//	}
//	defer s.Close()
//
//	x, _ := s.Var(mip.Integer(), mip.WithCoefficient(1), mip.WithUpper(10))
//	y, _ := s.Var(mip.Integer(), mip.WithCoefficient(2), mip.WithUpper(10))
//	s.ConstrainLe(14, []*mip.Var{x, y}, []float64{1, 2})
//
//	sol, err := s.Maximize()
//	if err == nil && sol.Optimal() {
//		fmt.Println(sol.Objective(), sol.Value(x), sol.Value(y))
//	}
//
// A solved session must be restarted before bounds or coefficients can
// change again; removing a constraint restarts it implicitly. Sessions
// are not safe for concurrent use.
package mip
