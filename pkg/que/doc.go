// Package que provides a builder and executor for named, sequential operations.
//
// A pipeline is assembled step by step. Each step is either a literal value injected with Put,
// or a computation added with Run that receives the results of every step before it. Steps are
// identified by a unique name, and the value a step produces is stored under that name in the
// changes map handed to the steps that follow.
//
// Building is side-effect free: every call returns a new Pipeline value and leaves the receiver
// untouched, so a common prefix can be shared by several pipelines. Adding the same name twice is
// a programming mistake and panics with a DuplicateStepError.
//
// Exec runs the steps in declaration order and stops on the first failure. The failure is reported
// as a StepError carrying the name of the failing step, its error and the changes accumulated
// before it ran. Steps that already failed before execution, such as a step added with Error or a
// put value whose Validate method rejects it, are detected before anything runs and reported with
// an empty changes map.
//
// Inspect adds a debugging tap that logs the changes accumulated so far without taking a name or
// altering the result.
package que
