package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestLoader_SingleRequest(t *testing.T) {
	l := NewLoader()

	called := false
	err := l.Do(context.Background(), "entry:1", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("fn should be called")
	}
}

func TestLoader_SupersedeCancelsPrevious(t *testing.T) {
	l := NewLoader()

	firstStarted := make(chan struct{})
	firstCanceled := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)

	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = l.Do(context.Background(), "entry:1", func(ctx context.Context) error {
			close(firstStarted)
			<-ctx.Done()
			close(firstCanceled)
			return ctx.Err()
		})
	}()

	<-firstStarted

	// Второй запрос по тому же ключу вытесняет первый.
	err := l.Do(context.Background(), "entry:1", func(ctx context.Context) error {
		<-firstCanceled
		return nil
	})
	if err != nil {
		t.Fatalf("second request should succeed: %v", err)
	}

	wg.Wait()
	if !errors.Is(firstErr, ErrSuperseded) {
		t.Errorf("first request should report ErrSuperseded, got %v", firstErr)
	}
}

func TestLoader_DifferentKeysIndependent(t *testing.T) {
	l := NewLoader()

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)

	var slowErr error
	go func() {
		defer wg.Done()
		slowErr = l.Do(context.Background(), "structure:a", func(ctx context.Context) error {
			close(started)
			<-release
			return ctx.Err()
		})
	}()

	<-started

	// Другой ключ не трогает незавершённый запрос.
	if err := l.Do(context.Background(), "structure:b", func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("unrelated key should not be affected: %v", err)
	}

	close(release)
	wg.Wait()
	if slowErr != nil {
		t.Errorf("request should complete normally, got %v", slowErr)
	}
}

func TestLoader_CancelAll(t *testing.T) {
	l := NewLoader()

	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	var err error
	go func() {
		defer wg.Done()
		err = l.Do(context.Background(), "entry:1", func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	<-started
	l.CancelAll()
	wg.Wait()

	if !errors.Is(err, ErrSuperseded) {
		t.Errorf("canceled request should report ErrSuperseded, got %v", err)
	}
}
