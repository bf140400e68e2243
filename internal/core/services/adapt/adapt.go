// Package adapt wraps typed Go functions and methods into domain.Unit values so
// reference and candidate code can be called through one EntryPoint shape.
package adapt

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

func sig(name string, ret reflect.Type, params ...reflect.Type) *domain.Signature {
	return &domain.Signature{Name: name, Params: params, Returns: ret}
}

func arg[A any](args []any, i int) (A, error) {
	var zero A
	if i >= len(args) {
		return zero, fmt.Errorf("missing argument %d", i)
	}
	if args[i] == nil {
		return zero, nil
	}
	a, ok := args[i].(A)
	if !ok {
		return zero, fmt.Errorf("argument %d is %T, want %s", i, args[i], reflect.TypeFor[A]())
	}
	return a, nil
}

func recv[T any](receiver any) (T, error) {
	var zero T
	t, ok := receiver.(T)
	if !ok {
		return zero, fmt.Errorf("receiver is %T, want %s", receiver, reflect.TypeFor[T]())
	}
	return t, nil
}

// Func0 adapts a static entry point without parameters.
func Func0[R any](entry string, fn func() R) domain.Unit {
	return domain.Unit{
		Signature: sig(entry, reflect.TypeFor[R]()),
		Call: func(_ context.Context, _ any, _ []any) (any, error) {
			return fn(), nil
		},
	}
}

// Func1 adapts a static entry point with one parameter.
func Func1[A, R any](entry string, fn func(A) R) domain.Unit {
	return domain.Unit{
		Signature: sig(entry, reflect.TypeFor[R](), reflect.TypeFor[A]()),
		Call: func(_ context.Context, _ any, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return fn(a), nil
		},
	}
}

// Func2 adapts a static entry point with two parameters.
func Func2[A, B, R any](entry string, fn func(A, B) R) domain.Unit {
	return domain.Unit{
		Signature: sig(entry, reflect.TypeFor[R](), reflect.TypeFor[A](), reflect.TypeFor[B]()),
		Call: func(_ context.Context, _ any, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			return fn(a, b), nil
		},
	}
}

func Func3[A, B, C, R any](entry string, fn func(A, B, C) R) domain.Unit {
	return domain.Unit{
		Signature: sig(entry, reflect.TypeFor[R](), reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()),
		Call: func(_ context.Context, _ any, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			c, err := arg[C](args, 2)
			if err != nil {
				return nil, err
			}
			return fn(a, b, c), nil
		},
	}
}

// FuncErr1 adapts a static entry point that reports failure through an error.
func FuncErr1[A, R any](entry string, fn func(A) (R, error)) domain.Unit {
	return domain.Unit{
		Signature: sig(entry, reflect.TypeFor[R](), reflect.TypeFor[A]()),
		Call: func(_ context.Context, _ any, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return fn(a)
		},
	}
}

// Context1 adapts a static entry point that observes cancellation.
func Context1[A, R any](entry string, fn func(context.Context, A) (R, error)) domain.Unit {
	return domain.Unit{
		Signature: sig(entry, reflect.TypeFor[R](), reflect.TypeFor[A]()),
		Call: func(ctx context.Context, _ any, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return fn(ctx, a)
		},
	}
}

// Action1 adapts a static void entry point with one parameter.
func Action1[A any](entry string, fn func(A)) domain.Unit {
	return domain.Unit{
		Signature: sig(entry, nil, reflect.TypeFor[A]()),
		Call: func(_ context.Context, _ any, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			fn(a)
			return nil, nil
		},
	}
}

// Method0 adapts a method expression such as (*Widget).Size.
func Method0[T, R any](entry string, fn func(T) R) domain.Unit {
	return domain.Unit{
		Signature:    sig(entry, reflect.TypeFor[R]()),
		ReceiverType: reflect.TypeFor[T](),
		Call: func(_ context.Context, receiver any, _ []any) (any, error) {
			t, err := recv[T](receiver)
			if err != nil {
				return nil, err
			}
			return fn(t), nil
		},
	}
}

// Method1 adapts a one-parameter method expression such as (*Widget).GetInner.
func Method1[T, A, R any](entry string, fn func(T, A) R) domain.Unit {
	return domain.Unit{
		Signature:    sig(entry, reflect.TypeFor[R](), reflect.TypeFor[A]()),
		ReceiverType: reflect.TypeFor[T](),
		Call: func(_ context.Context, receiver any, args []any) (any, error) {
			t, err := recv[T](receiver)
			if err != nil {
				return nil, err
			}
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return fn(t, a), nil
		},
	}
}

// VoidMethod0 adapts a void method expression without parameters.
func VoidMethod0[T any](entry string, fn func(T)) domain.Unit {
	return domain.Unit{
		Signature:    sig(entry, nil),
		ReceiverType: reflect.TypeFor[T](),
		Call: func(_ context.Context, receiver any, _ []any) (any, error) {
			t, err := recv[T](receiver)
			if err != nil {
				return nil, err
			}
			fn(t)
			return nil, nil
		},
	}
}

// VoidMethod1 adapts a void one-parameter method expression.
func VoidMethod1[T, A any](entry string, fn func(T, A)) domain.Unit {
	return domain.Unit{
		Signature:    sig(entry, nil, reflect.TypeFor[A]()),
		ReceiverType: reflect.TypeFor[T](),
		Call: func(_ context.Context, receiver any, args []any) (any, error) {
			t, err := recv[T](receiver)
			if err != nil {
				return nil, err
			}
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			fn(t, a)
			return nil, nil
		},
	}
}

// Receiver declares a unit without an entry point. Runs only generate its
// receivers and hand them to verification.
func Receiver[T any](newFn func(complexity int, r *rand.Rand) T) domain.Unit {
	return WithReceiver(domain.Unit{
		ReceiverType: reflect.TypeFor[T](),
	}, newFn)
}

// WithReceiver attaches a receiver factory to an instance-scoped unit.
func WithReceiver[T any](u domain.Unit, newFn func(complexity int, r *rand.Rand) T) domain.Unit {
	u.ReceiverType = reflect.TypeFor[T]()
	u.NewReceiver = func(complexity int, r *rand.Rand) (any, error) {
		return newFn(complexity, r), nil
	}
	return u
}

// Named returns u labelled as name. The catalog labels units by their
// registration key, so this only matters for units used directly.
func Named(u domain.Unit, name string) domain.Unit {
	u.Name = name
	return u
}
