// Package errors provides structured error types for the ucode-layout module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries context: field path, type and region names, the address
// involved, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseApply, errors.KindHost).
//		Region("header").
//		Type("AMD_MC_Header").
//		Address(0x1000).
//		Detail("define data variable").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Registration("AMD_Zen_MicroOp", cause)
//	err := errors.OutOfBounds(errors.PhaseSize, addr, end)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
