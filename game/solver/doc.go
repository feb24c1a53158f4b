// Package solver contains a perfect-memory autoplayer for the memory puzzle.
//
// The solver drives any engine.Engine through its public operations and
// only reads the masked state, so it has to reveal a tile before it knows
// the symbol underneath. It resolves its own mismatches immediately.
//
//	e, _ := engine.NewEngine(engine.Medium, 42)
//	res, err := solver.Solve(ctx, e)
//	fmt.Println(res.Moves, res.Mismatches)
package solver
