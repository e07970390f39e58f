package filewatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keti-strato/pms/pkg/utils/filewatch"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context is not canceled")
	}
}

func TestUntilModifyContext(t *testing.T) {
	theory := func(prepare func(t *testing.T, file string), modify func(t *testing.T, file string)) func(*testing.T) {
		return func(t *testing.T) {
			dir := t.TempDir()
			file := filepath.Join(dir, "config.yaml")
			prepare(t, file)

			ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), dir)
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()

			if err := ctx.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			modify(t, file)
			waitDone(t, ctx)

			var modified *filewatch.Modified
			if !errors.As(context.Cause(ctx), &modified) {
				t.Fatalf("unexpected cause: %v", context.Cause(ctx))
			}
			if modified.Name != file {
				t.Errorf("unexpected name: %s", modified.Name)
			}
		}
	}

	nothing := func(*testing.T, string) {}
	write := func(t *testing.T, file string) {
		if err := os.WriteFile(file, []byte("port: 8080\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	remove := func(t *testing.T, file string) {
		if err := os.Remove(file); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("when a file is created, it cancels context", theory(nothing, write))
	t.Run("when a file is written, it cancels context", theory(write, write))
	t.Run("when a file is removed, it cancels context", theory(write, remove))
}

func TestUntilModifyContext_Cancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	waitDone(t, ctx)
	if !errors.Is(context.Cause(ctx), context.Canceled) {
		t.Errorf("unexpected cause: %v", context.Cause(ctx))
	}
}

func TestUntilModifyContext_MissingFile(t *testing.T) {
	ctx, cancel, err := filewatch.UntilModifyContext(
		context.Background(), filepath.Join(t.TempDir(), "no-such-file"),
	)
	if err == nil {
		cancel()
		t.Fatalf("expected error, but got context %v", ctx)
	}
}
