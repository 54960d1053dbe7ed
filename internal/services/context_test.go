package services_test

import (
	"context"
	"testing"

	"bilingual/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-42")
	ctx = services.WithStage(ctx, "transcribe")
	ctx = services.WithChunkIndex(ctx, 2)
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "transcribe" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if idx, ok := services.ChunkIndexFromContext(ctx); !ok || idx != 2 {
		t.Fatalf("unexpected chunk index: %v %v", idx, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}

func TestChunkIndexZeroIsRecorded(t *testing.T) {
	ctx := services.WithChunkIndex(context.Background(), 0)
	if idx, ok := services.ChunkIndexFromContext(ctx); !ok || idx != 0 {
		t.Fatalf("expected chunk index 0, got %v %v", idx, ok)
	}
	if _, ok := services.ChunkIndexFromContext(services.WithChunkIndex(context.Background(), -1)); ok {
		t.Fatal("negative index should not be recorded")
	}
}
