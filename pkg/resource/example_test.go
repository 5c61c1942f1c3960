package resource_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/resource"
)

type font struct {
	name  string
	glyph int
}

// Example shows keyed loading in a shared pool: the second request for the
// same key reuses the loaded payload.
func Example() {
	pool, err := resource.New(resource.Config[font]{
		Name:     "example-fonts",
		Capacity: 4,
		Load: func(_ context.Context, key string, f *font) error {
			fmt.Println("loading", key)
			f.name = strings.TrimSuffix(key, ".ttf")
			f.glyph = 95
			return nil
		},
		Destroy: func(f *font) {
			fmt.Println("destroying", f.name)
		},
	}, resource.WithMetrics(nil))
	if err != nil {
		panic(err)
	}
	defer pool.Destroy()

	ctx := context.Background()
	a, _ := pool.LoadByKey(ctx, "mono.ttf")
	b, _ := pool.LoadByKey(ctx, "mono.ttf")
	refs, _ := pool.RefCountOf(a)
	fmt.Println(a == b, refs, a.glyph)

	_ = pool.Release(a)
	_ = pool.Release(b)
	fmt.Println("cleaned", pool.Clean())

	// Output:
	// loading mono.ttf
	// true 2 95
	// destroying mono
	// cleaned 1
}

// ExampleShared shows typed handles over a shared pool.
func ExampleShared() {
	pool, err := resource.New(resource.Config[font]{
		Name:     "example-handles",
		Capacity: 2,
		Load: func(_ context.Context, key string, f *font) error {
			f.name = key
			return nil
		},
	}, resource.WithMetrics(nil))
	if err != nil {
		panic(err)
	}

	h, _ := pool.LoadShared(context.Background(), "serif")
	clone, _ := h.Clone()
	fmt.Println(clone.Value().name, h.Handle() == clone.Handle())

	_ = h.Release()
	fmt.Println(h.Valid(), clone.Valid())
	fmt.Println(h.Release() != nil)

	// Output:
	// serif true
	// false true
	// true
}

// ExamplePool_Next walks the live payloads in slot order.
func ExamplePool_Next() {
	pool, err := resource.New(resource.Config[font]{Name: "example-walk", Capacity: 3}, resource.WithMetrics(nil))
	if err != nil {
		panic(err)
	}
	for i := 0; i < 3; i++ {
		f, _ := pool.Acquire()
		f.glyph = i * 10
	}

	for f := pool.Next(nil); f != nil; f = pool.Next(f) {
		fmt.Println(f.glyph)
	}

	// Output:
	// 0
	// 10
	// 20
}
