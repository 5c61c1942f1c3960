// Package errors provides examples of structured error handling in MoGUL.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypePoolExhausted, "no reclaimable slot").
		WithDetail("pool", "sprites").
		WithDetail("capacity", 64)

	fmt.Println(err.Error())

	// Output:
	// pool_exhausted: no reclaimable slot
}

// ExampleWrap shows how to wrap a decode failure.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeData, "failed to decode level").
		WithDetail("file", "levels/intro.yaml")

	if errors.IsType(err, errors.ErrorTypeData) {
		fmt.Println("This is a data error")
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Cause was unexpected EOF")
	}

	// Output:
	// This is a data error
	// Cause was unexpected EOF
}

// ExampleLoadFailed shows the loader failure error and sentinel matching.
func ExampleLoadFailed() {
	err := errors.LoadFailed("fonts", "fonts/mono.ttf", io.EOF)

	fmt.Println(err)
	fmt.Println(stderrors.Is(err, errors.ErrLoadFailed))
	fmt.Println(err.Detail("key"))

	// Output:
	// load_failed: failed to load "fonts/mono.ttf": EOF
	// true
	// fonts/mono.ttf
}

// ExampleIsRecoverable shows which pool errors a caller can handle.
func ExampleIsRecoverable() {
	exhausted := errors.New(errors.ErrorTypePoolExhausted, "no slot")
	foreign := errors.New(errors.ErrorTypeOutOfRange, "pointer not owned by pool")

	fmt.Println(errors.IsRecoverable(exhausted))
	fmt.Println(errors.IsRecoverable(foreign))

	// Output:
	// true
	// false
}
