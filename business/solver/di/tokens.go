// Package di contains dependency injection tokens for the solver context.
package di

import (
	solverapp "github.com/vantos/triarb/business/solver/app"
	coredi "github.com/vantos/triarb/internal/di"
)

// Solver is the DI token for the Cycle-Path Algorithm service.
const Solver = "solver.Solver"

// GetSolver resolves the shared Solver.
func GetSolver(sr coredi.ServiceRegistry) *solverapp.Solver {
	return coredi.Resolve[*solverapp.Solver](sr, Solver)
}
