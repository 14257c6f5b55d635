package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	hashembed "github.com/custodia-labs/sercha-sections/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantErr   error
		wantModel string
		wantDims  int
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "unknown provider",
			settings: &domain.EmbeddingSettings{Provider: "unknown"},
			wantErr:  domain.ErrUnsupportedType,
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name: "ollama uses known model size",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "mxbai-embed-large",
			},
			wantModel: "mxbai-embed-large",
			wantDims:  1024,
		},
		{
			name: "openai creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
			wantDims:  1536,
		},
		{
			name: "hash honours explicit dimensions",
			settings: &domain.EmbeddingSettings{
				Provider:   domain.AIProviderHash,
				Dimensions: 64,
			},
			wantModel: hashembed.DefaultModel,
			wantDims:  64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if svc != nil {
					t.Error("expected nil service")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer svc.Close()

			if svc.ModelName() != tt.wantModel {
				t.Errorf("ModelName() = %q, want %q", svc.ModelName(), tt.wantModel)
			}
			if svc.Dimensions() != tt.wantDims {
				t.Errorf("Dimensions() = %d, want %d", svc.Dimensions(), tt.wantDims)
			}
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	ctx := context.Background()

	t.Run("hash is always reachable", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider:   domain.AIProviderHash,
			Dimensions: 32,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		svc.Close()
	})

	t.Run("ollama reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		defer srv.Close()

		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
			Model:    "mxbai-embed-large",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		svc.Close()
	})

	t.Run("ollama unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
		})
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			t.Errorf("error = %v, want ErrEmbeddingUnavailable", err)
		}
		if err != nil && !strings.Contains(err.Error(), "unreachable") {
			t.Errorf("error %q should mention unreachable", err)
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{Provider: "unknown"})
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			t.Errorf("error = %v, want ErrEmbeddingUnavailable", err)
		}
		if !errors.Is(err, domain.ErrUnsupportedType) {
			t.Errorf("error = %v, want ErrUnsupportedType", err)
		}
	})
}

func TestValidateEmbeddingConfig(t *testing.T) {
	ctx := context.Background()

	if err := ValidateEmbeddingConfig(ctx, &domain.EmbeddingSettings{Provider: domain.AIProviderHash}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateEmbeddingConfig(ctx, nil); err == nil {
		t.Error("expected error for nil settings")
	}
}
