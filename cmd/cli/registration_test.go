package main

import (
	"testing"

	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/stretchr/testify/assert"
)

func TestRequirePersistentBackend(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{backend: kvstore.BackendMemory, wantErr: true},
		{backend: "", wantErr: true},
		{backend: kvstore.BackendRedis},
		{backend: kvstore.BackendDatabase},
	}

	for _, tt := range tests {
		t.Run("backend="+tt.backend, func(t *testing.T) {
			err := requirePersistentBackend(tt.backend)
			if tt.wantErr {
				assert.ErrorContains(t, err, "STORE_BACKEND=memory")
				return
			}
			assert.NoError(t, err)
		})
	}
}
