package memory_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"kubetodo/internal/adapter/cache/memory"
	"kubetodo/internal/core/domain"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	RegisterTestingT(t)

	cache := memory.NewMemoryRepository()
	ctx := context.Background()

	Expect(cache.Set(ctx, "key", []byte("value"), time.Minute)).To(Succeed())

	val, err := cache.Get(ctx, "key")
	Expect(err).To(BeNil())
	Expect(val).To(Equal([]byte("value")))

	Expect(cache.Delete(ctx, "key")).To(Succeed())

	_, err = cache.Get(ctx, "key")
	Expect(err).To(MatchError(domain.ErrNotFound))
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	RegisterTestingT(t)

	cache := memory.NewMemoryRepository()
	ctx := context.Background()

	Expect(cache.Set(ctx, "response:a", []byte("a"), time.Minute)).To(Succeed())
	Expect(cache.Set(ctx, "response:b", []byte("b"), time.Minute)).To(Succeed())
	Expect(cache.Set(ctx, "other:c", []byte("c"), time.Minute)).To(Succeed())

	Expect(cache.DeleteByPrefix(ctx, "response:")).To(Succeed())

	_, err := cache.Get(ctx, "response:a")
	Expect(err).To(MatchError(domain.ErrNotFound))

	_, err = cache.Get(ctx, "response:b")
	Expect(err).To(MatchError(domain.ErrNotFound))

	val, err := cache.Get(ctx, "other:c")
	Expect(err).To(BeNil())
	Expect(val).To(Equal([]byte("c")))
}
